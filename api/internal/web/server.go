// Package web serves the browser front end: a text box, an image upload, a
// camera capture control and a submit button.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notes-capture/api/internal/capture"
	"notes-capture/api/internal/httpserver"
	"notes-capture/api/internal/util"
)

const (
	DefaultMaxUploadBytes = 20 << 20

	sessionCookie = "notes_session"
)

var (
	//go:embed templates/index.html
	templatesFS embed.FS

	indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

	// extensions accepted by the upload control; the camera accepts any image
	uploadExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

	errUnsupportedUpload = errors.New("unsupported upload type")
)

// Submitter runs one capture action.
type Submitter interface {
	Submit(ctx context.Context, in capture.Input) capture.Feedback
}

type Server struct {
	sub            Submitter
	log            *zap.Logger
	MaxUploadBytes int64
}

func New(sub Submitter, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{sub: sub, log: log, MaxUploadBytes: DefaultMaxUploadBytes}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", httpserver.Healthz)
	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("POST /submit", s.submit)
	return mux
}

type preview struct {
	Caption string
	Src     template.URL
}

type page struct {
	Text      string
	Processed string
	Messages  []capture.Message
	Previews  []preview
}

// session returns the browser's session id, issuing a cookie on first use.
func session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	session(w, r)
	s.render(w, http.StatusOK, page{})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	sid := session(w, r)
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.MaxUploadBytes); err != nil {
		s.log.Warn("parse form", zap.Error(err))
		fb := capture.Reject(capture.LevelError,
			fmt.Sprintf("Images too large (max %dMB) or invalid form.", s.MaxUploadBytes>>20), err)
		s.render(w, http.StatusBadRequest, toPage("", fb))
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	text := r.FormValue("notes")
	in, err := readInput(r, text)
	if err != nil {
		s.log.Warn("rejected upload", zap.Error(err))
		fb := capture.Reject(capture.LevelError, "Please choose a jpg, jpeg or png image.", err)
		s.render(w, http.StatusBadRequest, toPage(text, fb))
		return
	}

	in.Session = sid
	fb := s.sub.Submit(r.Context(), in)
	s.render(w, http.StatusOK, toPage(text, fb))
}

func readInput(r *http.Request, text string) (capture.Input, error) {
	in := capture.Input{Text: text}

	data, mime, name, err := formFile(r, "upload")
	if err != nil {
		return in, err
	}
	if len(data) > 0 {
		if !uploadExts[strings.ToLower(filepath.Ext(name))] || !util.IsUploadMIME(util.SniffMimeHTTP(data)) {
			return in, fmt.Errorf("%w: %s", errUnsupportedUpload, name)
		}
		in.Uploaded, in.UploadedMIME = data, mime
	}

	data, mime, _, err = formFile(r, "camera")
	if err != nil {
		return in, err
	}
	if len(data) > 0 {
		if !util.IsImageMIME(util.PickMIME(mime, data)) {
			return in, fmt.Errorf("%w: camera capture is not an image", errUnsupportedUpload)
		}
		in.Captured, in.CapturedMIME = data, mime
	}
	return in, nil
}

// formFile returns nil data when the field was left empty.
func formFile(r *http.Request, field string) ([]byte, string, string, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", "", nil
	}
	if err != nil {
		return nil, "", "", fmt.Errorf("read %s: %w", field, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, "", "", fmt.Errorf("read %s: %w", field, err)
	}
	return buf.Bytes(), hdr.Header.Get("Content-Type"), hdr.Filename, nil
}

func toPage(text string, fb capture.Feedback) page {
	p := page{Text: text, Processed: fb.Processed, Messages: fb.Messages}
	for _, pv := range fb.Previews {
		src := util.MakeDataURL(pv.MIME, base64.StdEncoding.EncodeToString(pv.Data))
		p.Previews = append(p.Previews, preview{Caption: pv.Caption, Src: template.URL(src)})
	}
	return p
}

func (s *Server) render(w http.ResponseWriter, code int, p page) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, p); err != nil {
		s.log.Error("render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}
