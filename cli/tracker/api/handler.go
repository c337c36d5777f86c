package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/api/dto/request"
	"github.com/daniil11ru/qrtrack/cli/tracker/api/dto/response"
	"github.com/daniil11ru/qrtrack/cli/tracker/domain"
	"github.com/daniil11ru/qrtrack/cli/tracker/storage"
	"github.com/daniil11ru/qrtrack/cli/tracker/types"
	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 100
	defaultGeneratedBy  = "system"

	userNotFound   = "User not found"
	deviceNotFound = "Device not found"
	codeNotFound   = "QR code not found"
)

// Policies задаёт политику обновления для каждого маршрута.
type Policies struct {
	Locations domain.UpdatePolicy
	Devices   domain.UpdatePolicy
	QRCodes   domain.UpdatePolicy
}

type Dependencies struct {
	Repository  domain.PrimaryRepository
	Geocoder    domain.Geocoder
	Publisher   domain.Publisher
	EventFormat storage.Format
	Generator   *domain.CodeGenerator
	NameFiller  *domain.FillLocationNames
	Policies    Policies
}

type Handler struct {
	recordLocation    *domain.RecordLocation
	getHistory        *domain.GetHistory
	markOffline       *domain.MarkOffline
	generateCodes     *domain.GenerateCodes
	registerEntity    *domain.RegisterEntity
	getDevices        *domain.GetDevices
	lookupCode        *domain.LookupCode
	listLocations     *domain.ListLocations
	fillLocationNames *domain.FillLocationNames
	policies          Policies
}

func NewHandler(d Dependencies) *Handler {
	generator := d.Generator
	if generator == nil {
		generator = &domain.CodeGenerator{Checker: d.Repository}
	}
	filler := d.NameFiller
	if filler == nil {
		filler = &domain.FillLocationNames{PrimaryRepository: d.Repository, Geocoder: d.Geocoder}
	}

	return &Handler{
		recordLocation: &domain.RecordLocation{
			PrimaryRepository: d.Repository,
			Geocoder:          d.Geocoder,
			Publisher:         d.Publisher,
			EventFormat:       d.EventFormat,
		},
		getHistory:        &domain.GetHistory{PrimaryRepository: d.Repository},
		markOffline:       &domain.MarkOffline{PrimaryRepository: d.Repository},
		generateCodes:     &domain.GenerateCodes{PrimaryRepository: d.Repository, Generator: generator},
		registerEntity:    &domain.RegisterEntity{PrimaryRepository: d.Repository, Generator: generator},
		getDevices:        &domain.GetDevices{PrimaryRepository: d.Repository},
		lookupCode:        &domain.LookupCode{PrimaryRepository: d.Repository},
		listLocations:     &domain.ListLocations{PrimaryRepository: d.Repository},
		fillLocationNames: filler,
		policies:          d.Policies,
	}
}

func (h *Handler) updateLocation(c *gin.Context, ref types.EntityRef, policy domain.UpdatePolicy, msg, notFound string) {
	req := request.UpdateLocation{}
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.recordLocation.Run(c.Request.Context(), ref, req.ToSample(), domain.RecordOptions{Policy: policy})
	if err != nil {
		respondError(c, err, notFound)
		return
	}

	c.JSON(http.StatusOK, response.LocationUpdated{
		Msg:             msg,
		CurrentLocation: response.NewCurrentLocation(result.Entity),
		TotalDistance:   result.Entity.TotalDistance,
		IsTracking:      result.Entity.IsTracking,
	})
}

func (h *Handler) UpdateUserLocation(c *gin.Context) {
	h.updateLocation(c, types.UserRef(c.Param("userId")), h.policies.Locations, "Location updated successfully", userNotFound)
}

func (h *Handler) UpdateDeviceLocation(c *gin.Context) {
	h.updateLocation(c, types.DeviceRef(c.Param("deviceId")), h.policies.Devices, "Device location updated successfully", deviceNotFound)
}

func (h *Handler) MarkUserOffline(c *gin.Context) {
	if err := h.markOffline.Run(types.UserRef(c.Param("userId"))); err != nil {
		respondError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "User marked as offline"})
}

func (h *Handler) MarkDeviceOffline(c *gin.Context) {
	if err := h.markOffline.Run(types.DeviceRef(c.Param("deviceId"))); err != nil {
		respondError(c, err, deviceNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Device marked as offline"})
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	value := c.Query(key)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, &types.ValidationError{Message: fmt.Sprintf("%s must be an RFC3339 timestamp", key)}
	}
	return &t, nil
}

func parseHistoryRequest(c *gin.Context) (request.GetHistory, error) {
	req := request.GetHistory{Limit: defaultHistoryLimit}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return req, &types.ValidationError{Message: "limit must be a positive number"}
		}
		req.Limit = limit
	}

	var err error
	if req.Since, err = parseTimeQuery(c, "since"); err != nil {
		return req, err
	}
	if req.Start, err = parseTimeQuery(c, "start"); err != nil {
		return req, err
	}
	if req.End, err = parseTimeQuery(c, "end"); err != nil {
		return req, err
	}
	return req, nil
}

func (h *Handler) history(c *gin.Context, ref types.EntityRef, notFound string) {
	req, err := parseHistoryRequest(c)
	if err != nil {
		respondError(c, err, notFound)
		return
	}

	locations, err := h.getHistory.Run(ref, domain.HistoryQuery{
		Since: req.Since,
		Start: req.Start,
		End:   req.End,
		Limit: req.Limit,
	})
	if err != nil {
		respondError(c, err, notFound)
		return
	}

	c.JSON(http.StatusOK, response.NewLocations(locations))
}

func (h *Handler) GetUserHistory(c *gin.Context) {
	h.history(c, types.UserRef(c.Param("userId")), userNotFound)
}

func (h *Handler) GetDeviceHistory(c *gin.Context) {
	h.history(c, types.DeviceRef(c.Param("deviceId")), deviceNotFound)
}

func (h *Handler) GetUserLocations(c *gin.Context) {
	users, err := h.listLocations.Run(types.EntityKindUser)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, response.NewEntities(users))
}

func (h *Handler) GetDeviceLocations(c *gin.Context) {
	devices, err := h.listLocations.Run(types.EntityKindDevice)
	if err != nil {
		respondError(c, err, deviceNotFound)
		return
	}
	c.JSON(http.StatusOK, response.NewEntities(devices))
}

func (h *Handler) RegisterUser(c *gin.Context) {
	req := request.RegisterUser{}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.registerEntity.RunUser(req.Name)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusCreated, response.NewEntity(user))
}

func (h *Handler) AddDevice(c *gin.Context) {
	req := request.RegisterDevice{}
	if !bindJSON(c, &req) {
		return
	}

	device, err := h.registerEntity.RunDevice(req.UserID, req.Name, req.QRCode)
	if err != nil {
		respondError(c, err, "User or QR code not found")
		return
	}
	c.JSON(http.StatusCreated, response.NewEntity(device))
}

func (h *Handler) GetDevices(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		respondError(c, &types.ValidationError{Message: "userId is required"}, userNotFound)
		return
	}

	devices, err := h.getDevices.Run(userID)
	if err != nil {
		respondError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, response.NewEntities(devices))
}

func (h *Handler) UpdateCodeLocation(c *gin.Context) {
	req := request.UpdateLocation{}
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.recordLocation.RunByCode(c.Request.Context(), c.Param("qrCode"), req.ToSample(), domain.RecordOptions{
		Policy:      h.policies.QRCodes,
		Geocode:     true,
		WithHistory: true,
	})
	if err != nil {
		respondError(c, err, codeNotFound)
		return
	}

	e := result.Entity
	resp := response.QRLocationUpdated{
		Message:         "User location updated",
		QRCode:          e.QRCode,
		TotalDistance:   e.TotalDistance,
		Appended:        result.Appended,
		LocationHistory: response.NewHistory(result.History, response.PendingName),
	}
	if e.Kind == types.EntityKindDevice {
		resp.Message = "Device location updated"
	}
	if current := e.CurrentLocation(); current != nil {
		resp.Latitude = current.Latitude
		resp.Longitude = current.Longitude
		resp.LocationName = current.LocationName
		resp.LastUpdated = current.LastUpdated
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetCodeHistory(c *gin.Context) {
	entity, history, err := h.getHistory.RunByCode(c.Param("qrCode"))
	if err != nil {
		respondError(c, err, codeNotFound)
		return
	}
	c.JSON(http.StatusOK, response.QRHistory{
		QRCode:          entity.QRCode,
		LocationHistory: response.NewHistory(history, response.PendingName),
	})
}

func (h *Handler) LookupCode(c *gin.Context) {
	details, err := h.lookupCode.Run(c.Param("qrCode"))
	if err != nil {
		respondError(c, err, codeNotFound)
		return
	}
	c.JSON(http.StatusOK, response.NewCodeDetails(details))
}

func (h *Handler) GenerateCodes(c *gin.Context) {
	req := request.GenerateCodes{}
	if !bindJSON(c, &req) {
		return
	}
	if req.GeneratedBy == "" {
		req.GeneratedBy = defaultGeneratedBy
	}

	codes, err := h.generateCodes.Run(req.Count, req.GeneratedBy)
	if err != nil {
		respondError(c, err, codeNotFound)
		return
	}
	c.JSON(http.StatusOK, response.GeneratedCodes{
		Msg:   fmt.Sprintf("%d QR codes generated successfully.", len(codes)),
		Codes: codes,
	})
}

func (h *Handler) FixLocationNames(c *gin.Context) {
	entity, history, result, err := h.fillLocationNames.RunByCode(c.Request.Context(), c.Param("qrCode"))
	if err != nil {
		respondError(c, err, codeNotFound)
		return
	}
	message := "User location names fixed"
	if entity.Kind == types.EntityKindDevice {
		message = "Device location names fixed"
	}
	c.JSON(http.StatusOK, response.LocationNamesFixed{
		Message:         message,
		Named:           result.Named,
		Failed:          result.Failed,
		LocationHistory: response.NewHistory(history, response.UnknownName),
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
