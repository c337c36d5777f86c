package request

type RegisterUser struct {
	Name string `json:"name"`
}

type RegisterDevice struct {
	UserID string  `json:"userId"`
	QRCode string  `json:"qrCode"`
	Name   *string `json:"name"`
}

type GenerateCodes struct {
	Count       int    `json:"count"`
	GeneratedBy string `json:"generatedBy"`
}
