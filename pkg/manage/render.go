package manage

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tstromberg/galleri/pkg/galleri"
	"k8s.io/klog/v2"
)

//go:embed assets/gallery.tmpl
var galleryTmpl string

//go:embed assets/setup.tmpl
var setupTmpl string

//go:embed assets/style.css
var styleText string

func (s *Server) renderGallery(w http.ResponseWriter, dir string, g galleri.Gallery, lm time.Time) {
	data := struct {
		Title        string
		Directory    string
		Gallery      galleri.Gallery
		LastModified float64
		PollMillis   int64
		Style        template.CSS
	}{
		Title:        s.title,
		Directory:    dir,
		Gallery:      g,
		LastModified: galleri.Seconds(lm),
		PollMillis:   s.poll.Milliseconds(),
		Style:        template.CSS(styleText),
	}

	bs, err := render("gallery", galleryTmpl, data)
	if err != nil {
		klog.Errorf("render gallery: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, bs)
}

func (s *Server) renderSetup(w http.ResponseWriter) {
	data := struct {
		Title string
		Style template.CSS
	}{
		Title: s.title,
		Style: template.CSS(styleText),
	}

	bs, err := render("setup", setupTmpl, data)
	if err != nil {
		klog.Errorf("render setup: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, bs)
}

func render(name string, ts string, data any) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(tmplFunctions()).Parse(ts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	var tpl bytes.Buffer
	if err = tmpl.Execute(&tpl, data); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return tpl.Bytes(), nil
}

func writeHTML(w http.ResponseWriter, bs []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(bs); err != nil {
		klog.Errorf("write: %v", err)
	}
}

// tmplFunctions are functions available to our templates.
func tmplFunctions() template.FuncMap {
	return template.FuncMap{
		"ImageURL": func(name string) string {
			return "/images/" + url.PathEscape(name)
		},
		"Join": strings.Join,
	}
}
