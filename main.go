// Copyright 2025 The fawa Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/fawa-io/lanshare/pkg/config"
	"github.com/fawa-io/lanshare/pkg/cors"
	"github.com/fawa-io/lanshare/pkg/fwlog"
	"github.com/fawa-io/lanshare/pkg/netaddr"
	"github.com/fawa-io/lanshare/pkg/qrcode"
	"github.com/fawa-io/lanshare/pkg/serverurl"
	"github.com/fawa-io/lanshare/pkg/storage"
	"github.com/fawa-io/lanshare/pkg/util"
	"github.com/fawa-io/lanshare/service/exchange"
)

func main() {
	loader := config.NewLoader()
	cfg, err := loader.Load(os.Args[1:])
	if err != nil {
		fwlog.Fatalf("Failed to initialize configuration: %v", err)
	}
	if lv, err := fwlog.ParseLevel(cfg.LogLevel); err != nil {
		fwlog.Warnf("Invalid log level %q, using %s", cfg.LogLevel, lv)
	} else {
		fwlog.SetLevel(lv)
	}
	loader.Watch(config.ApplyLogLevel)

	if err := util.EnsureDir(cfg.StorageDir); err != nil {
		fwlog.Fatalf("Failed to create storage dir %s: %v", cfg.StorageDir, err)
	}

	address := resolveAddress(cfg.Discovery)
	url, err := serverurl.Build(address, cfg.Port)
	if err != nil {
		fwlog.Fatalf("Failed to build server URL: %v", err)
	}

	qrPath, err := qrcode.Generate(url, filepath.Join(cfg.StorageDir, cfg.QRCode.Name))
	if err != nil {
		fwlog.Fatalf("Failed to generate QR code: %v", err)
	}
	fwlog.Infof("QR code written to %s", qrPath)
	if cfg.QRCode.Terminal {
		qrcode.PrintTerminal(os.Stdout, url)
	}

	meta := newMetaStorage(cfg.Redis)
	mirror := newMirror(cfg.MinIO)
	svc := exchange.NewService(cfg.StorageDir, meta, mirror)
	info := exchange.Info{URL: url, QRCode: cfg.QRCode.Name}

	// Register all handlers
	mux := http.NewServeMux()
	mux.Handle(exchange.NewExchangeServiceHandler(svc, info))
	mux.Handle("/", exchange.NewHandler(svc, info))

	lanshareSrv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           cors.NewCORS().Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Setup graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		fwlog.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := lanshareSrv.Shutdown(ctx); err != nil {
			fwlog.Errorf("Server shutdown error: %v", err)
		}

		fwlog.Info("Server shutdown complete")
		os.Exit(0)
	}()

	color.New(color.FgGreen, color.Bold).Printf("Server is running and accessible via %s\n", url)
	fwlog.Infof("Server starting on %v", lanshareSrv.Addr)

	if err := lanshareSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fwlog.Fatalf("Failed to start server: %v", err)
	}
}

// resolveAddress runs the discovery chain once. Each strategy may run two
// commands, so it gets twice the per-command timeout.
func resolveAddress(cfg config.DiscoveryConfig) string {
	strategies := netaddr.DefaultStrategies(runtime.GOOS, netaddr.Options{
		Runner: netaddr.ExecRunner{Timeout: cfg.CommandTimeout},
		Labels: netaddr.AdapterLabels{
			Wireless: cfg.WirelessLabels,
			Ethernet: cfg.EthernetLabels,
			IPv4:     cfg.IPv4Label,
		},
		ProbeTargets: cfg.ProbeTargets,
		UseGateway:   cfg.UseGateway,
	})
	return netaddr.NewResolver(2*cfg.CommandTimeout, strategies...).Resolve(context.Background())
}

// newMetaStorage uses Dragonfly when an address is configured and falls
// back to process memory otherwise or when it cannot be reached.
func newMetaStorage(cfg config.RedisConfig) storage.Storage {
	if cfg.Addr == "" {
		return storage.NewMemoryStorage(cfg.TTL)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := storage.NewDragonflyStorage(ctx, storage.DragonflyOptions{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		TTL:      cfg.TTL,
	})
	if err != nil {
		fwlog.Warnf("Share links kept in memory: %v", err)
		return storage.NewMemoryStorage(cfg.TTL)
	}
	fwlog.Infof("Share links stored in Dragonfly at %s", cfg.Addr)
	return s
}

func newMirror(cfg config.MinIOConfig) storage.Mirror {
	if cfg.Endpoint == "" {
		return nil
	}
	m, err := storage.NewMinioMirror(context.Background(), storage.MinioOptions{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Bucket:          cfg.Bucket,
		UseSSL:          cfg.UseSSL,
		Region:          cfg.Region,
	})
	if err != nil {
		fwlog.Warnf("Uploads will not be mirrored: %v", err)
		return nil
	}
	fwlog.Infof("Mirroring uploads to MinIO bucket %s", cfg.Bucket)
	return m
}
