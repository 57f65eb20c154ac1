// Package manage provides the HTTP handlers for browsing and annotating a gallery.
package manage

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/tstromberg/galleri/pkg/galleri"
	"k8s.io/klog/v2"
)

// DefaultPoll is how often the page asks whether the directory changed.
var DefaultPoll = 5 * time.Second

// Options configure a Server.
type Options struct {
	Title    string
	Poll     time.Duration
	Measurer galleri.Measurer
	Detector *galleri.Detector
	// Watcher, if set, follows the image directory and must report to Detector.
	Watcher *galleri.Watcher
}

// Server is a server for the gallery web app.
type Server struct {
	store    *galleri.Store
	det      *galleri.Detector
	measurer galleri.Measurer
	watcher  *galleri.Watcher
	title    string
	poll     time.Duration
}

// New creates a new server.
func New(store *galleri.Store, o Options) *Server {
	s := &Server{
		store:    store,
		det:      o.Detector,
		measurer: o.Measurer,
		watcher:  o.Watcher,
		title:    o.Title,
		poll:     o.Poll,
	}
	if s.det == nil {
		s.det = galleri.NewDetector()
	}
	if s.measurer == nil {
		s.measurer = galleri.DecodeMeasurer{}
	}
	if s.title == "" {
		s.title = "Image Gallery"
	}
	if s.poll <= 0 {
		s.poll = DefaultPoll
	}
	return s
}

// Router returns the routes served by s.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.GalleryHandler()).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/images/{filename}", s.ImageHandler()).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/get_images", s.ImagesHandler()).Methods(http.MethodGet)
	r.HandleFunc("/check_updates", s.CheckHandler()).Methods(http.MethodGet)
	r.HandleFunc("/save_image_info", s.SaveHandler()).Methods(http.MethodPost)
	r.Use(logRequests)
	return r
}

// Follow points the watcher, if any, at the configured image directory.
func (s *Server) Follow() error {
	if s.watcher == nil || !s.store.Configured() {
		return nil
	}
	d, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return s.follow(d.ImageDirectory)
}

func (s *Server) follow(dir string) error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.SetDir(dir)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		klog.V(1).Infof("%s %s", r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	})
}

// GalleryHandler renders the gallery page, optionally switching the image directory first.
func (s *Server) GalleryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.store.Configured() {
			s.renderSetup(w)
			return
		}

		d, err := s.store.Load()
		if err != nil {
			klog.Errorf("load config: %v", err)
			http.Error(w, "Failed to load or create configuration. Please check your settings directory permissions.", http.StatusInternalServerError)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, fmt.Sprintf("bad form: %v", err), http.StatusBadRequest)
			return
		}

		vals, ok := r.Form["image_directory"]
		if r.Method == http.MethodPost && !ok {
			http.Error(w, "image_directory is required", http.StatusBadRequest)
			return
		}

		if ok {
			dir := strings.TrimSpace(vals[0])
			nd, err := s.store.SetDirectory(dir)
			if errors.Is(err, galleri.ErrDirectoryNotFound) {
				http.Error(w, fmt.Sprintf("The directory '%s' does not exist. Please enter a valid directory path.", dir), http.StatusBadRequest)
				return
			}
			if err != nil {
				klog.Errorf("set directory: %v", err)
				http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
				return
			}
			d = nd

			if err := s.follow(dir); err != nil {
				klog.Warningf("unable to watch %s: %v", dir, err)
			}
			s.det.Reset(dir)

			if r.Method == http.MethodPost {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
		}

		g := galleri.Build(d.ImageDirectory, d.ImageInfo, s.measurer)
		lm := s.det.Reset(d.ImageDirectory)
		s.renderGallery(w, d.ImageDirectory, g, lm)
	}
}

// sanitizeFilename reduces name to a single path element.
func sanitizeFilename(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)
	if base == "." || base == ".." || base == "/" {
		return "", false
	}
	return base, true
}

// ImageHandler streams one file from the image directory.
func (s *Server) ImageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := sanitizeFilename(mux.Vars(r)["filename"])
		if !ok {
			http.Error(w, "Invalid filename", http.StatusBadRequest)
			return
		}

		d, err := s.store.Load()
		if err != nil || d.ImageDirectory == "" {
			klog.Warningf("unable to serve %s: config=%v err=%v", name, d, err)
			http.Error(w, "Configuration error", http.StatusInternalServerError)
			return
		}

		http.ServeFile(w, r, filepath.Join(d.ImageDirectory, name))
	}
}

type imagesResponse struct {
	Images           []galleri.ImageView `json:"images"`
	AllTags          []string            `json:"all_tags"`
	LastModifiedTime float64             `json:"last_modified_time"`
}

// ImagesHandler returns the current gallery as JSON.
func (s *Server) ImagesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := s.store.Load()
		if err != nil {
			configError(w, err)
			return
		}

		g := galleri.Build(d.ImageDirectory, d.ImageInfo, s.measurer)
		writeJSON(w, http.StatusOK, imagesResponse{
			Images:           g.Images,
			AllTags:          g.AllTags,
			LastModifiedTime: galleri.Seconds(s.det.ModTime(d.ImageDirectory)),
		})
	}
}

type checkResponse struct {
	Updated          bool     `json:"updated"`
	LastModifiedTime *float64 `json:"last_modified_time,omitempty"`
}

// CheckHandler reports whether the image directory changed since the last
// positive check. With ?since=<seconds> it compares against the client's value
// instead and leaves server state alone.
func (s *Server) CheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := s.store.Load()
		if err != nil {
			configError(w, err)
			return
		}

		if v := r.URL.Query().Get("since"); v != "" {
			since, err := strconv.ParseFloat(v, 64)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "Invalid since"})
				return
			}
			lm := galleri.Seconds(s.det.ModTime(d.ImageDirectory))
			writeJSON(w, http.StatusOK, checkResponse{Updated: lm > since, LastModifiedTime: &lm})
			return
		}

		writeJSON(w, http.StatusOK, checkResponse{Updated: s.det.Check(d.ImageDirectory)})
	}
}

type saveRequest struct {
	ImageID string        `json:"image_id"`
	Info    *string       `json:"info"`
	Source  *string       `json:"source"`
	Tags    *galleri.Tags `json:"tags"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SaveHandler stores the annotation for one image.
func (s *Server) SaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.store.Load(); err != nil {
			configError(w, err)
			return
		}

		var req saveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			klog.V(1).Infof("bad save request: %v", err)
			writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "Invalid data"})
			return
		}

		if req.ImageID == "" || req.Info == nil || req.Source == nil || req.Tags == nil {
			writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "Invalid data"})
			return
		}

		a := galleri.Annotation{Info: *req.Info, Source: *req.Source, Tags: *req.Tags}
		if err := s.store.Upsert(req.ImageID, a); err != nil {
			klog.Errorf("save %s: %v", req.ImageID, err)
			writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: "Failed to save configuration"})
			return
		}

		writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
	}
}

func configError(w http.ResponseWriter, err error) {
	klog.Errorf("load config: %v", err)
	writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: "Failed to load configuration"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.Errorf("Failed to encode JSON: %v", err)
	}
}
