package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lich2000117/Frigate-SimpleUI/internal/adapter"
	"github.com/lich2000117/Frigate-SimpleUI/internal/codec"
	"github.com/lich2000117/Frigate-SimpleUI/internal/config"
	"github.com/lich2000117/Frigate-SimpleUI/internal/domain"
	"github.com/lich2000117/Frigate-SimpleUI/internal/frigate"
	"github.com/lich2000117/Frigate-SimpleUI/internal/handler"
	"github.com/lich2000117/Frigate-SimpleUI/internal/hub"
	"github.com/lich2000117/Frigate-SimpleUI/internal/service"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Frigate-SimpleUI server...")

	cfg, path, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if path != "" {
		log.Printf("Config loaded from %s", path)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// Clients for the recorder and its restreamer
	frigateClient := frigate.NewClient(cfg.Frigate.URL, cfg.Frigate.Timeout)
	go2rtcClient := frigate.NewGo2RTC(cfg.Go2RTC.URL, cfg.Go2RTC.Timeout)
	log.Printf("Frigate at %s, go2rtc at %s", cfg.Frigate.URL, cfg.Go2RTC.URL)

	// Event bus and SSE hub
	eventBus := service.NewEventBus()
	sseHub := hub.New()
	go sseHub.Run()

	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(event)
		}
	}()

	// Config store seeded with the stock skeleton values
	skeleton := codec.Skeleton{
		MQTTHost:         cfg.MQTT.Host,
		MQTTPort:         cfg.MQTT.Port,
		MQTTUser:         cfg.MQTT.User,
		MQTTPassword:     cfg.MQTT.Password,
		WebRTCCandidates: cfg.WebRTC.Candidates,
		WebRTCListen:     cfg.WebRTC.Listen,
	}
	svc := service.NewConfigService(frigateClient, eventBus, skeleton, domain.DetectorDevice(cfg.Detector.DefaultDevice))

	// Initial sync from the recorder. A dead recorder is not fatal,
	// the UI can still scan and stage cameras and save later.
	loadCtx, loadCancel := context.WithTimeout(context.Background(), cfg.Frigate.Timeout)
	if err := svc.Load(loadCtx); err != nil {
		log.Printf("Warning: initial config load failed: %v", err)
	}
	loadCancel()

	// Adapters
	discovery := adapter.NewDiscovery()
	negotiator := adapter.NewNegotiator()
	tester := adapter.NewStreamTester(go2rtcClient)
	snapshots := adapter.NewSnapshotter(go2rtcClient)

	api := handler.NewAPI(svc)
	api.SetScanner(discovery)
	api.SetNegotiator(negotiator)
	api.SetStreamTester(tester)
	api.SetSnapshotter(snapshots)
	api.SetRecorder(frigateClient)

	mux := http.NewServeMux()

	// Camera endpoints
	mux.HandleFunc("GET /api/cameras", api.ListCameras)
	mux.HandleFunc("POST /api/cameras", api.UpsertCamera)
	mux.HandleFunc("POST /api/cameras/reload", api.ReloadCameras)
	mux.HandleFunc("GET /api/cameras/{name}", api.GetCamera)
	mux.HandleFunc("DELETE /api/cameras/{name}", api.DeleteCamera)
	mux.HandleFunc("GET /api/cameras/{name}/snapshot", api.Snapshot)

	// Discovery endpoints
	mux.HandleFunc("POST /api/scan/all", api.ScanAll)
	mux.HandleFunc("POST /api/scan/streams", api.NegotiateStreams)
	mux.HandleFunc("GET /api/scan/interfaces", api.ListInterfaces)

	// Detector and object endpoints
	mux.HandleFunc("GET /api/detector", api.GetDetector)
	mux.HandleFunc("POST /api/detector", api.SetDetector)
	mux.HandleFunc("GET /api/objects", api.ListObjects)

	// Config endpoints
	mux.HandleFunc("POST /api/config/save", api.SaveConfig)
	mux.HandleFunc("GET /api/config/yaml", api.GetConfigYAML)
	mux.HandleFunc("POST /api/config/yaml", api.PutConfigYAML)

	// Stream testing
	mux.HandleFunc("POST /api/stream/test", api.TestStream)

	// Health and SSE events
	mux.HandleFunc("GET /api/health", api.Health)
	mux.Handle("GET /events", sseHub)

	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
