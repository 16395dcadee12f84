package cli

import (
	"fmt"

	nfs "github.com/CageChen/nativefs/internal/fs"
	"github.com/CageChen/nativefs/internal/handler"
	"github.com/CageChen/nativefs/internal/logging"
	"github.com/CageChen/nativefs/internal/watcher"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the inspection API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.GetLogger().WithPrefix("serve")
		if servePort != 0 {
			cfg.Port = servePort
		}

		st := module.Status()
		if st.Available {
			log.Info("Native module loaded from %s", st.LoadedFrom)
		} else {
			log.Info("Native module unavailable, using the portable filesystem: %s", st.Reason)
		}
		log.Info("Config file: %s", cfg.GetConfigFilePath())
		log.Info("Serving %d root(s):", len(cfg.Roots))
		for i, r := range cfg.Roots {
			log.Info("  [%d] %s -> %s", i, r.Alias, r.Path)
		}

		var opts []handler.Option
		var w *watcher.Watcher
		if cfg.Watch {
			var err error
			w, err = watcher.New(cfg, nfs.Selector(module))
			if err != nil {
				log.Warn("Failed to create file watcher: %v", err)
			} else {
				opts = append(opts, handler.WithWatcher(w))
			}
		}

		srv := handler.NewServer(cfg, module, opts...)
		if w != nil {
			w.OnChange(srv.WS().OnFileChange)
			if err := w.Start(); err != nil {
				log.Warn("Failed to start file watcher: %v", err)
			}
			defer func() { _ = w.Stop() }()
			log.Info("File watcher enabled")
		}

		gin.SetMode(gin.ReleaseMode)
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info("Server starting at: http://localhost:%d", cfg.Port)
		if err := srv.Router().Run(addr); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}
