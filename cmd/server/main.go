package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"incident-tracker/api"
	"incident-tracker/config"
	"incident-tracker/core/files"
	"incident-tracker/core/graph"
	"incident-tracker/core/store"
	"incident-tracker/core/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to yaml config (optional, env vars override)")
	seed := flag.Bool("seed", false, "load sample data and exit")
	flag.Parse()

	logger := utils.NewLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("load config: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	g, err := graph.Connect(ctx, cfg.Graph)
	cancel()
	if err != nil {
		logger.Errorf("connect graph store: %v", err)
		os.Exit(1)
	}
	defer g.Close(context.Background())

	if err := g.EnsureSchema(context.Background()); err != nil {
		logger.Errorf("apply schema: %v", err)
		os.Exit(1)
	}

	incidents := store.NewIncidentsStore(g)
	users := store.NewUsersStore(g)
	playbooks := store.NewPlaybooksStore(g)
	artifacts := store.NewArtifactsStore(g)
	references := store.NewReferencesStore(g)

	if *seed {
		if err := store.Seed(context.Background(), users, playbooks, incidents); err != nil {
			logger.Errorf("seed: %v", err)
			os.Exit(1)
		}
		logger.Infof("Sample data loaded")
		return
	}

	filesSvc, err := files.NewService(cfg.Uploads)
	if err != nil {
		logger.Errorf("init uploads: %v", err)
		os.Exit(1)
	}

	var sweeper *files.Sweeper
	if cfg.Sweeper.Enabled {
		sweeper, err = files.NewSweeper(filesSvc, referencedFiles(incidents, playbooks), cfg.Sweeper, logger)
		if err != nil {
			logger.Errorf("init sweeper: %v", err)
			os.Exit(1)
		}
		if err := sweeper.Start(); err != nil {
			logger.Errorf("start sweeper: %v", err)
			os.Exit(1)
		}
		defer sweeper.Stop()
	}

	srv := api.NewServer(cfg, api.Deps{
		Incidents:  incidents,
		Users:      users,
		Playbooks:  playbooks,
		Artifacts:  artifacts,
		References: references,
		Files:      filesSvc,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Infof("Environment: %s", cfg.Environment)
	logger.Infof("Graph URI: %s", cfg.Graph.URI)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Errorf("server: %v", err)
		os.Exit(1)
	case sig := <-stop:
		logger.Infof("%s received, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// referencedFiles collects every stored name still recorded in the graph,
// for the sweeper to diff against the upload directories.
func referencedFiles(incidents store.IncidentsStore, playbooks store.PlaybooksStore) files.ReferencedFunc {
	return func(ctx context.Context) (map[string]struct{}, error) {
		refs := map[string]struct{}{}
		all, err := incidents.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, inc := range all {
			for _, f := range inc.Files {
				refs[f.StoredName] = struct{}{}
			}
		}
		pbs, err := playbooks.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, pb := range pbs {
			if pb.FlowDiagramURL != "" {
				refs[path.Base(pb.FlowDiagramURL)] = struct{}{}
			}
		}
		return refs, nil
	}
}
