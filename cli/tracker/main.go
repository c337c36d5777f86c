package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/daniil11ru/qrtrack/cli/tracker/api"
	"github.com/daniil11ru/qrtrack/cli/tracker/config"
	"github.com/daniil11ru/qrtrack/cli/tracker/domain"
	"github.com/daniil11ru/qrtrack/cli/tracker/geocoder"
	"github.com/daniil11ru/qrtrack/cli/tracker/repository"
	"github.com/daniil11ru/qrtrack/cli/tracker/source"
	"github.com/daniil11ru/qrtrack/cli/tracker/storage"
	"github.com/daniil11ru/qrtrack/cli/tracker/storage/store/websocket"
	"github.com/gin-gonic/gin"
	cron "github.com/robfig/cron/v3"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const liveFeedBuffer = 64

func main() {
	configFilePath := ""
	flag.StringVar(&configFilePath, "c", "", "путь до конфигурационного файла")
	flag.Parse()
	settings, err := getConfig(configFilePath)
	if err != nil {
		log.Fatalf("Не удалось получить конфиг: %v", err)
		return
	}

	configureLogging(settings)

	primarySource, err := newPrimarySource(settings)
	if err != nil {
		log.Fatalf("Не удалось инициализировать источник данных: %v", err)
		return
	}

	exportRepository := storage.NewRepository()
	if err := exportRepository.LoadStorages(settings.Store); err != nil {
		log.Fatalf("Не удалось подключить хранилища экспорта: %v", err)
		return
	}
	hub := websocket.NewHub(liveFeedBuffer, settings.GetEventFormat() != storage.FormatJSON)
	exportRepository.AddStore(hub)
	export := storage.NewAsyncRepository(exportRepository, settings.ExportBuffer, settings.ExportWorkers)

	primaryRepository := &repository.Primary{Source: primarySource}

	var reverseGeocoder domain.Geocoder
	if settings.IsGeocoderEnabled() {
		reverseGeocoder = geocoder.NewNominatim(geocoder.Config{
			URL:               settings.Geocoder.URL,
			UserAgent:         settings.Geocoder.UserAgent,
			Timeout:           settings.GetGeocoderTimeout(),
			RequestsPerSecond: settings.Geocoder.RequestsPerSecond,
		})
	} else {
		log.Info("Обратное геокодирование отключено")
	}

	nameFiller := &domain.FillLocationNames{
		PrimaryRepository: primaryRepository,
		Geocoder:          reverseGeocoder,
		Batch:             settings.FillLocationNamesBatch,
	}
	if reverseGeocoder != nil {
		if err := nameFiller.Schedule(settings.FillLocationNamesCron); err != nil {
			log.Fatalf("Не удалось запланировать заполнение названий мест: %v", err)
			return
		}
	}

	locations, devices, qrcodes := settings.GetPolicies()
	handler := api.NewHandler(api.Dependencies{
		Repository:  primaryRepository,
		Geocoder:    reverseGeocoder,
		Publisher:   export,
		EventFormat: settings.GetEventFormat(),
		Generator:   &domain.CodeGenerator{Checker: primaryRepository, MaxAttempts: settings.CodeMaxAttempts},
		NameFiller:  nameFiller,
		Policies:    api.Policies{Locations: locations, Devices: devices, QRCodes: qrcodes},
	})

	maintenance := cron.New()
	var limiter *api.RateLimiter
	if settings.RateLimit.Requests > 0 {
		limiter = api.NewRateLimiter(settings.RateLimit.Requests, settings.GetRateLimitWindow())
		if _, err := maintenance.AddFunc("@hourly", limiter.Reset); err != nil {
			log.Fatalf("Не удалось запланировать сброс ограничителя запросов: %v", err)
			return
		}
	}
	maintenance.Start()

	if settings.GetLogLevel() != log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	controller := api.NewController(handler, hub, limiter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiErr := make(chan error, 1)
	go func() {
		apiErr <- controller.Run(settings.GetApiAddress())
	}()

	select {
	case <-ctx.Done():
		log.Info("Получен сигнал завершения")
	case err := <-apiErr:
		if err != nil {
			log.WithField("err", err).Error("API остановлен с ошибкой")
		}
	}

	shutdown(settings, controller, nameFiller, maintenance, export, exportRepository, hub, primarySource)
}

func shutdown(
	settings config.Settings,
	controller *api.Controller,
	nameFiller *domain.FillLocationNames,
	maintenance *cron.Cron,
	export *storage.AsyncRepository,
	exportRepository *storage.Repository,
	hub *websocket.Hub,
	primarySource source.Primary,
) {
	ctx, cancel := context.WithTimeout(context.Background(), settings.GetShutdownTimeout())
	defer cancel()

	if err := controller.Shutdown(ctx); err != nil {
		log.WithField("err", err).Error("Ошибка остановки API")
	}

	nameFiller.Shutdown()
	<-maintenance.Stop().Done()

	export.Close()
	if err := exportRepository.Close(); err != nil {
		log.WithField("err", err).Error("Ошибка закрытия хранилищ экспорта")
	}
	if err := hub.Close(); err != nil {
		log.WithField("err", err).Error("Ошибка закрытия websocket-хаба")
	}

	if err := primarySource.Close(); err != nil {
		log.WithField("err", err).Error("Ошибка закрытия источника данных")
	}
	log.Info("Сервис остановлен")
}

func getConfig(configFilePath string) (config.Settings, error) {
	if configFilePath == "" {
		return config.Settings{}, errors.New("не задан путь до конфига")
	}

	c, err := config.New(configFilePath)
	if err != nil {
		return c, fmt.Errorf("ошибка парсинга конфига: %w", err)
	}
	return c, nil
}

func newPrimarySource(settings config.Settings) (source.Primary, error) {
	if settings.Source == config.SourceMemory {
		log.Warn("Используется хранилище в памяти, данные не сохранятся после перезапуска")
		return source.NewMemory(), nil
	}

	if err := applyMigrations(settings); err != nil {
		return nil, err
	}
	return source.NewDefaultPrimary(settings.GetDatabaseDSN())
}

func configureLogging(settings config.Settings) {
	log.SetLevel(settings.GetLogLevel())

	consoleFmt := &log.TextFormatter{ForceColors: true, FullTimestamp: false}
	log.SetFormatter(consoleFmt)
	log.SetOutput(os.Stdout)

	if settings.LogFilePath == "" {
		return
	}

	logDir := filepath.Dir(settings.LogFilePath)
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
			log.Fatalf("Не получилось создать директорию для логов: %v", err)
		}
	}

	log.AddHook(newFileHook(settings))
}

func newFileHook(settings config.Settings) *lfshook.LfsHook {
	lumberjackLogger := &lumberjack.Logger{
		Filename:   settings.LogFilePath,
		MaxSize:    100,
		MaxBackups: 366,
		MaxAge:     settings.LogMaxAgeDays,
		Compress:   true,
	}

	writers := lfshook.WriterMap{}
	for _, level := range log.AllLevels {
		writers[level] = lumberjackLogger
	}
	return lfshook.NewHook(writers, &log.TextFormatter{DisableColors: true, FullTimestamp: true})
}

func applyMigrations(settings config.Settings) error {
	m, err := migrate.New(settings.MigrationsPath, settings.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Нет новых миграций для применения")
			return nil
		}
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	log.Info("Миграции успешно применены")
	return nil
}
