package app

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	"github.com/joinby-app/qr-gateway/internal/config"
	"github.com/joinby-app/qr-gateway/internal/credentials"
	"github.com/joinby-app/qr-gateway/internal/firebaseauth"
	"github.com/joinby-app/qr-gateway/internal/firestore"
	"github.com/joinby-app/qr-gateway/internal/handler"
	"github.com/joinby-app/qr-gateway/internal/kakao"
	"github.com/joinby-app/qr-gateway/internal/middleware"
	"github.com/joinby-app/qr-gateway/internal/proto"
	"github.com/joinby-app/qr-gateway/internal/resolver"
	"github.com/joinby-app/qr-gateway/internal/scanlog"
)

type App struct {
	config     *config.Config
	handler    http.Handler
	grpcServer *grpc.Server
	scanStore  *scanlog.Store
	recorder   *scanlog.Recorder
}

func NewApp(cfg *config.Config) *App {
	var source credentials.Source
	if cfg.StaticAccessToken != "" {
		source = credentials.NewStaticSource(cfg.StaticAccessToken)
	} else {
		source = credentials.NewServiceAccountSource(cfg.ServiceAccountMail, cfg.ServiceAccountKey, cfg.TokenEndpoint)
	}
	source = credentials.NewCachedSource(source)

	store := firestore.NewClient(cfg.FirestoreBaseURL, cfg.FirebaseProjectID)
	res := resolver.New(source, store, cfg.Collections, cfg.CanonicalCollection)

	app := &App{config: cfg}

	// The scan log is analytics only; a missing or unreachable database
	// must not keep the gateway from serving redirects.
	var scanRecorder middleware.ScanRecorder
	var dbPinger handler.DBPinger
	if cfg.DatabaseDSN != "" {
		scanStore, err := scanlog.NewStore(cfg.DatabaseDSN)
		if err != nil {
			log.Warn().Err(err).Msg("Scan log unavailable, continuing without it")
		} else {
			app.scanStore = scanStore
			app.recorder = scanlog.NewRecorder(scanStore, scanlog.DefaultConfig())
			scanRecorder = app.recorder
			dbPinger = scanStore
		}
	}

	var kakaoVerifier handler.KakaoVerifier
	var minter handler.TokenMinter
	if cfg.ServiceAccountMail != "" && cfg.ServiceAccountKey != "" {
		kakaoVerifier = kakao.NewClient(cfg.KakaoUserInfoURL)
		minter = firebaseauth.NewMinter(cfg.ServiceAccountMail, cfg.ServiceAccountKey)
	}

	qrRedirect := middleware.NewQRRedirect(res, scanRecorder)

	httpHandler := handler.NewHandler(res, kakaoVerifier, minter, dbPinger)
	app.handler = httpHandler.RegisterRoutes(qrRedirect.Handler)

	if cfg.GRPCAddress != "" {
		app.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(middleware.LoggingInterceptor))
		proto.RegisterQRServiceServer(app.grpcServer, handler.NewQRGRPCServer(res))
	}

	return app
}

func (a *App) Run() error {
	if a.recorder != nil {
		a.recorder.Start()
	}

	if a.grpcServer != nil {
		lis, err := net.Listen("tcp", a.config.GRPCAddress)
		if err != nil {
			return err
		}

		go func() {
			log.Info().Str("address", a.config.GRPCAddress).Msg("Starting gRPC server")
			if err := a.grpcServer.Serve(lis); err != nil {
				log.Error().Err(err).Msg("gRPC server stopped")
			}
		}()
	}

	log.Info().
		Str("address", a.config.ServerAddress).
		Str("baseURL", a.config.BaseURL).
		Msg("Starting HTTP server")

	return http.ListenAndServe(a.config.ServerAddress, a.handler)
}

// Stop flushes the scan log and stops the gRPC listener.
func (a *App) Stop() {
	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}
	if a.recorder != nil {
		if err := a.recorder.Shutdown(5 * time.Second); err != nil {
			log.Warn().Err(err).Msg("Scan recorder did not stop cleanly")
		}
	}
	if a.scanStore != nil {
		a.scanStore.Close()
	}
}
