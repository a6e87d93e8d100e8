package serverapp

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"taskdesk/internal/config"
	"taskdesk/internal/httpmw"
	"taskdesk/internal/task"
	"taskdesk/static"
)

type Options struct {
	Config        *config.Config
	DataDir       string
	StaticDir     string
	UseDiskStatic bool
	Logger        *log.Logger
}

// NewHandler wires storage, the task collection and the HTTP surface
// into one handler behind the middleware chain.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if strings.TrimSpace(opts.DataDir) == "" {
		opts.DataDir = opts.Config.Storage.DataDir
	}
	if strings.TrimSpace(opts.StaticDir) == "" {
		opts.StaticDir = opts.Config.UI.StaticDir
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	store, err := task.NewFileStore(opts.DataDir)
	if err != nil {
		return nil, err
	}
	manager := task.NewManager(store, opts.Logger)
	taskHandler := task.NewHandler(manager)
	taskHandler.DefaultSort = opts.Config.UI.DefaultSort
	taskHandler.CompletionWindow = opts.Config.Stats.CompletionWindowDays

	mux := http.NewServeMux()

	assets := staticfiles.EmbeddedFS()
	if opts.UseDiskStatic {
		assets = os.DirFS(opts.StaticDir)
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(assets))))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		// Served by hand: FileServer 301s any .../index.html back to
		// its directory, so handing it the rewritten path loops.
		b, err := fs.ReadFile(assets, "index.html")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(b)
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskdesk",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, _, err := store.Load(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "task storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskdesk",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/api/tasks", taskHandler.TasksRoot)
	mux.HandleFunc("/api/tasks/", taskHandler.TasksSub)
	mux.HandleFunc("/api/clients", taskHandler.ClientsRoot)
	mux.HandleFunc("/api/clients/", taskHandler.ClientsSub)
	mux.HandleFunc("/api/stats", taskHandler.Stats)
	mux.HandleFunc("/api/stats/clients", taskHandler.StatsClients)
	mux.HandleFunc("/api/stats/completions", taskHandler.StatsCompletions)
	mux.HandleFunc("/api/calendar", taskHandler.Calendar)

	mux.HandleFunc("/api/save-tasks", taskHandler.SaveTasks)
	mux.HandleFunc("/api/load-tasks", taskHandler.LoadTasks)
	mux.HandleFunc("/api/export-tasks", taskHandler.ExportTasks)
	mux.HandleFunc("/api/import-tasks", taskHandler.ImportTasks)

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(opts.Config); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	return httpmw.Chain(
		mux,
		httpmw.WithAccessLog(opts.Logger),
		httpmw.WithRequestID,
		httpmw.WithCORS(opts.Config.Server.CORS.AllowedOrigins),
		httpmw.WithRecover(opts.Logger),
	), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
