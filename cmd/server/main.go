// Package main provides the entry point for the Alexa Cookidoo skill server.
// The server exposes the Alexa webhook over HTTP and forwards add-item
// commands to the Cookidoo shopping list of the configured account.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/router-for-me/AlexaCookidooSkill/internal/alexa"
	"github.com/router-for-me/AlexaCookidooSkill/internal/api"
	"github.com/router-for-me/AlexaCookidooSkill/internal/buildinfo"
	"github.com/router-for-me/AlexaCookidooSkill/internal/config"
	"github.com/router-for-me/AlexaCookidooSkill/internal/cookidoo"
	"github.com/router-for-me/AlexaCookidooSkill/internal/logging"
	"github.com/router-for-me/AlexaCookidooSkill/internal/metrics"
	"github.com/router-for-me/AlexaCookidooSkill/internal/shopping"
	"github.com/router-for-me/AlexaCookidooSkill/internal/util"
	"github.com/router-for-me/AlexaCookidooSkill/internal/watcher"
	log "github.com/sirupsen/logrus"
)

var (
	Version           = "dev"
	Commit            = "none"
	BuildDate         = "unknown"
	DefaultConfigPath = ""
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

// main parses flags, loads configuration and credentials, wires the Cookidoo
// client behind the skill handler and serves HTTP until a shutdown signal.
func main() {
	fmt.Printf("AlexaCookidooSkill Version: %s, Commit: %s, BuiltAt: %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)

	var configPath string
	flag.StringVar(&configPath, "config", DefaultConfigPath, "Configure File Path")
	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		log.Errorf("failed to get working directory: %v", err)
		return
	}

	// Load environment variables from .env if present.
	if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil {
		if !errors.Is(errLoad, os.ErrNotExist) {
			log.WithError(errLoad).Warn("failed to load .env file")
		}
	}

	configFilePath := configPath
	if configFilePath == "" {
		configFilePath = filepath.Join(wd, "config.yaml")
	}
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return
	}

	if err = logging.ConfigureLogOutput(cfg); err != nil {
		log.Errorf("failed to configure log output: %v", err)
		return
	}

	log.Infof("AlexaCookidooSkill Version: %s, Commit: %s, BuiltAt: %s", buildinfo.Version, buildinfo.Commit, buildinfo.BuildDate)

	// Set the log level based on the configuration.
	util.SetLogLevel(cfg)

	// Account secrets come from the environment only; they are never echoed
	// to log output, not even partially.
	creds, err := config.LoadCredentials()
	if err != nil {
		log.Errorf("failed to load credentials: %v", err)
		return
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	httpClient := cookidoo.NewHTTPClient(cfg)
	tokens := cookidoo.NewTokenManager(cfg, creds, httpClient, collector)
	list := cookidoo.NewShoppingList(cfg, tokens, httpClient, collector)
	skill := alexa.NewSkillHandler(shopping.NewAddItemService(list), collector)
	server := api.NewServer(cfg, skill, registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reloadMu sync.Mutex
	currentCfg := cfg
	configWatcher, errWatcher := watcher.NewWatcher(configFilePath, func(newCfg *config.Config) {
		reloadMu.Lock()
		defer reloadMu.Unlock()
		applyConfigReload(currentCfg, newCfg)
		currentCfg = newCfg
	})
	if errWatcher != nil {
		log.Warnf("config watcher disabled: %v", errWatcher)
	} else if errStart := configWatcher.Start(ctx); errStart != nil {
		log.Warnf("config watcher disabled: %v", errStart)
	} else {
		defer func() {
			if errStop := configWatcher.Stop(); errStop != nil {
				log.Errorf("failed to stop config watcher: %v", errStop)
			}
		}()
	}

	log.Infof("skill server instance %s ready", server.InstanceID())
	if err = server.Run(ctx); err != nil {
		log.Errorf("skill server exited with error: %v", err)
	}
}

// applyConfigReload applies the hot-reloadable settings from a changed config
// file and calls out the ones that need a restart.
func applyConfigReload(oldCfg, newCfg *config.Config) {
	if oldCfg.Port != newCfg.Port || oldCfg.SkillPath != newCfg.SkillPath {
		log.Warn("port and skill-path changes require a restart to take effect")
	}
	if oldCfg.ProxyURL != newCfg.ProxyURL || oldCfg.Cookidoo != newCfg.Cookidoo {
		log.Warn("proxy and cookidoo changes require a restart to take effect")
	}
	util.SetLogLevel(newCfg)
	if errLog := logging.ConfigureLogOutput(newCfg); errLog != nil {
		log.Errorf("failed to reconfigure log output: %v", errLog)
	}
}
