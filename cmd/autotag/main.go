// autotag suggests tags for gallery images using Gemini and stores them as annotations.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"google.golang.org/genai"
	"k8s.io/klog/v2"

	"github.com/tstromberg/galleri/pkg/galleri"
)

var (
	dryRun      = flag.Bool("n", false, "dry-run mode, don't save tags")
	overwrite   = flag.Bool("o", false, "overwrite existing tags")
	settingsDir = flag.String("settings", "", "settings directory holding config.json (default $GALLERI_SETTINGS_DIR)")
	modelName   = flag.String("model", "gemini-2.5-flash", "model used to suggest tags")
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

	store := galleri.NewStore(*settingsDir)
	d, err := store.Load()
	if err != nil {
		klog.Exitf("load settings: %v", err)
	}
	if d.ImageDirectory == "" {
		klog.Exitf("no image directory configured in %s", store.Path())
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_AI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		klog.Exitf("genai client: %v", err)
	}

	s := galleri.ListImages(d.ImageDirectory)
	klog.Infof("autotag: %d images in %s (%s)", len(s.Names), d.ImageDirectory, s.Status)

	tagged := 0
	for _, name := range s.Names {
		a := d.Annotation(name)
		if !*overwrite && len(a.Tags) > 0 {
			klog.Infof("%s has tags: %v", name, a.Tags)
			continue
		}

		tags, err := galleri.SuggestTags(ctx, client, *modelName, filepath.Join(d.ImageDirectory, name))
		if err != nil {
			klog.Errorf("suggest tags for %s: %v", name, err)
			continue
		}

		klog.Infof("adding tags to %s: %v", name, tags)
		if *dryRun {
			continue
		}

		a.Tags = tags
		if err := store.Upsert(name, a); err != nil {
			klog.Exitf("save %s: %v", name, err)
		}
		tagged++
	}

	klog.Infof("autotag completed: tagged %d of %d images", tagged, len(s.Names))
}
