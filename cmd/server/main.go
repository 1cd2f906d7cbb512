/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package main is the entry point for starting the MissionFlow server.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/skyforge/missionflow/internal/system/cert"
	"github.com/skyforge/missionflow/internal/system/config"
	serverconst "github.com/skyforge/missionflow/internal/system/constants"
	"github.com/skyforge/missionflow/internal/system/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := log.GetLogger()

	serverHome := getServerHome(logger)

	cfg := initConfigurations(logger, serverHome)
	if cfg == nil {
		logger.Fatal("Failed to initialize configurations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux, serviceManager := initMultiplexer(ctx, logger, cfg, serverHome)
	defer serviceManager.Close()

	server, serverAddr := createHTTPServer(logger, cfg, mux)
	go shutdownOnSignal(ctx, logger, server)

	if cfg.Server.HTTPOnly {
		logger.Info("TLS is not enabled, starting server without TLS")
		startHTTPServer(logger, server, serverAddr)
	} else {
		startTLSServer(logger, cfg, server, serverAddr, serverHome)
	}
}

// getServerHome retrieves and returns the server home directory.
func getServerHome(logger *log.Logger) string {
	serverHome := ""
	homeFlag := flag.String("home", "", "Path to the MissionFlow home directory")
	flag.Parse()

	if *homeFlag != "" {
		logger.Info("Using home directory from command line argument", log.String("home", *homeFlag))
		serverHome = *homeFlag
	} else {
		// If no command line argument is provided, use the current working directory.
		dir, dirErr := os.Getwd()
		if dirErr != nil {
			logger.Fatal("Failed to get current working directory", log.Error(dirErr))
		}
		serverHome = dir
	}

	return serverHome
}

// initConfigurations loads the deployment configuration and initializes the runtime.
func initConfigurations(logger *log.Logger, serverHome string) *config.Config {
	configFilePath := path.Join(serverHome, serverconst.DefaultConfigPath)
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		logger.Fatal("Failed to load configurations", log.Error(err))
	}

	if err := config.InitializeRuntime(serverHome, cfg); err != nil {
		logger.Fatal("Failed to initialize server runtime", log.Error(err))
	}

	return cfg
}

// initMultiplexer initializes the HTTP multiplexer and registers the services.
func initMultiplexer(ctx context.Context, logger *log.Logger, cfg *config.Config,
	serverHome string) (*http.ServeMux, *serviceManager) {
	mux := http.NewServeMux()
	sm := newServiceManager(mux, cfg, serverHome)

	if err := sm.RegisterServices(ctx); err != nil {
		sm.Close()
		logger.Fatal("Failed to register the services", log.Error(err))
	}

	return mux, sm
}

// startTLSServer starts the HTTPS server with TLS configuration.
func startTLSServer(logger *log.Logger, cfg *config.Config, server *http.Server, serverAddr string,
	serverHome string) {
	tlsConfig, err := cert.GetTLSConfig(cfg.Security, serverHome)
	if err != nil {
		logger.Fatal("Failed to load TLS configuration", log.Error(err))
	}

	ln, err := tls.Listen("tcp", serverAddr, tlsConfig)
	if err != nil {
		logger.Fatal("Failed to start TLS listener", log.Error(err))
	}

	logger.Info("MissionFlow server started (HTTPS)...", log.String("address", serverAddr))
	serve(logger, server, ln)
}

// startHTTPServer starts the HTTP server without TLS.
func startHTTPServer(logger *log.Logger, server *http.Server, serverAddr string) {
	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		logger.Fatal("Failed to start HTTP listener", log.Error(err))
	}

	logger.Info("MissionFlow server started (HTTP)...", log.String("address", serverAddr))
	serve(logger, server, ln)
}

func serve(logger *log.Logger, server *http.Server, ln net.Listener) {
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to serve requests", log.Error(err))
		return
	}
	logger.Info("MissionFlow server stopped")
}

// shutdownOnSignal stops the server gracefully once ctx is cancelled.
func shutdownOnSignal(ctx context.Context, logger *log.Logger, server *http.Server) {
	<-ctx.Done()
	logger.Info("Shutting down the server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down the server gracefully", log.Error(err))
	}
}

// createHTTPServer creates and configures an HTTP server with common settings.
func createHTTPServer(logger *log.Logger, cfg *config.Config, mux *http.ServeMux) (*http.Server, string) {
	// Wrap the multiplexer with AccessLogHandler.
	wrappedMux := log.AccessLogHandler(logger, mux)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)

	server := &http.Server{
		Addr:              serverAddr,
		Handler:           wrappedMux,
		ReadHeaderTimeout: 10 * time.Second, // Mitigate Slowloris attacks
		WriteTimeout:      60 * time.Second, // Dry runs respond after the whole workflow ran
		IdleTimeout:       120 * time.Second,
	}

	return server, serverAddr
}
