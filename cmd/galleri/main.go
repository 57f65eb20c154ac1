// galleri serves a browsable, annotatable gallery of the images in one directory.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/tstromberg/galleri/pkg/galleri"
	"github.com/tstromberg/galleri/pkg/manage"
)

var (
	settingsDir = flag.String("settings", "", "settings directory holding config.json (default $GALLERI_SETTINGS_DIR)")
	addr        = flag.String("addr", "", "host:port to bind to (default $GALLERI_ADDR or localhost:5005)")
	title       = flag.String("title", "Image Gallery", "title of the gallery page")
	watchFlag   = flag.Bool("watch", false, "watch the image directory for in-place edits")
	useExiftool = flag.Bool("exiftool", false, "fall back to exiftool when an image cannot be decoded")
	poll        = flag.Duration("poll", manage.DefaultPoll, "how often the page checks for changes")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		klog.Warningf("unable to load .env: %v", err)
	}

	if *settingsDir == "" {
		*settingsDir = os.Getenv("GALLERI_SETTINGS_DIR")
	}
	if *addr == "" {
		*addr = os.Getenv("GALLERI_ADDR")
	}
	if *addr == "" {
		*addr = "localhost:5005"
	}

	store := galleri.NewStore(*settingsDir)
	if err := store.Ensure(); err != nil {
		// The server still starts so it can explain how to configure itself.
		klog.Warningf("settings unavailable: %v", err)
	}

	o := manage.Options{
		Title:    *title,
		Poll:     *poll,
		Detector: galleri.NewDetector(),
	}

	if *useExiftool {
		em, err := galleri.NewExifMeasurer()
		if err != nil {
			klog.Exitf("exiftool failed: %v", err)
		}
		defer func() {
			if err := em.Close(); err != nil {
				klog.Errorf("Failed to close exiftool: %v", err)
			}
		}()
		o.Measurer = em
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	if *watchFlag {
		w, err := galleri.NewWatcher(o.Detector)
		if err != nil {
			klog.Exitf("watch failed: %v", err)
		}
		defer w.Close()
		o.Watcher = w

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				klog.Errorf("watcher stopped: %v", err)
			}
		}()
	}

	s := manage.New(store, o)
	if err := s.Follow(); err != nil {
		klog.Warningf("unable to watch image directory: %v", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		serve(s, *addr)
	}()

	wg.Wait()
}

// serve serves the gallery via HTTP
func serve(s *manage.Server, addr string) {
	klog.Infof("Listening on http://%s ...", addr)
	if err := http.ListenAndServe(addr, s.Router()); err != nil {
		klog.Exitf("listen failed: %v", err)
	}
}
