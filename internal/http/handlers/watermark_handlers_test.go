package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zip"
	"github.com/phambaophuc/image-watermark/internal/config"
	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/phambaophuc/image-watermark/internal/services/batch"
	"github.com/phambaophuc/image-watermark/internal/services/processor"
	"github.com/phambaophuc/image-watermark/internal/services/settings"
	"go.uber.org/zap"
)

type upload struct {
	field    string
	filename string
	data     []byte
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+2], img.Pix[i+3] = 180, 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func logoBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 60, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 60; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 200})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestHandler(t *testing.T, policy string) (*WatermarkHandler, *gin.Engine, settings.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Processing.MaxFileSize = 5 << 20
	cfg.Processing.MaxBatchFiles = 5
	cfg.Processing.ArchiveName = "watermarked_images.zip"
	cfg.Processing.FailurePolicy = policy

	store := settings.NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	svc := batch.NewService(processor.NewImageProcessor(90), zap.NewNop(), batch.Options{FailurePolicy: policy})
	h := NewWatermarkHandler(svc, store, zap.NewNop(), cfg)

	r := gin.New()
	r.POST("/batch", h.BatchWatermark)
	r.POST("/preview", h.Preview)
	r.GET("/settings", h.GetSettings)
	r.GET("/health", h.HealthCheck)
	return h, r, store
}

func multipartRequest(t *testing.T, path string, files []upload, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(f.data)
	}
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestBatchWatermark_Success(t *testing.T) {
	_, r, store := newTestHandler(t, models.PolicySkip)

	files := []upload{
		{imagesParamKey, "a.png", pngBytes(t, 400, 300)},
		{imagesParamKey, "b.png", pngBytes(t, 200, 200)},
		{imagesParamKey, "c.png", pngBytes(t, 640, 360)},
		{watermarkParamKey, "logo.png", logoBytes(t)},
	}
	fields := map[string]string{"opacity": "200", "scale": "0.2", "anchor": "bottom-right"}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/batch", files, fields))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Expected application/zip, got %s", ct)
	}
	if w.Header().Get(headerProcessed) != "3" || w.Header().Get(headerSkipped) != "0" {
		t.Errorf("Unexpected batch headers: %v", w.Header())
	}
	if w.Header().Get(headerRunID) == "" {
		t.Error("Expected run id header")
	}

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	if err != nil {
		t.Fatalf("Response is not a zip: %v", err)
	}
	want := map[string]image.Point{"a.jpg": {400, 300}, "b.jpg": {200, 200}, "c.jpg": {640, 360}}
	if len(zr.File) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(zr.File))
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		cfg, _, err := image.DecodeConfig(rc)
		rc.Close()
		if err != nil {
			t.Errorf("%s not decodable: %v", f.Name, err)
			continue
		}
		if size, ok := want[f.Name]; !ok || cfg.Width != size.X || cfg.Height != size.Y {
			t.Errorf("%s: got %dx%d", f.Name, cfg.Width, cfg.Height)
		}
	}

	saved, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if saved.Opacity != 200 || saved.Scale != 0.2 || saved.Anchor != models.AnchorBottomRight {
		t.Errorf("Settings not saved after run: %+v", saved)
	}
}

func TestBatchWatermark_SkipsCorruptImages(t *testing.T) {
	_, r, _ := newTestHandler(t, models.PolicySkip)

	files := []upload{
		{imagesParamKey, "ok.png", pngBytes(t, 100, 100)},
		{imagesParamKey, "bad file.jpg", []byte("garbage")},
		{watermarkParamKey, "logo.png", logoBytes(t)},
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/batch", files, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(headerSkipped) != "1" {
		t.Errorf("Expected 1 skipped, got %s", w.Header().Get(headerSkipped))
	}
	if got := w.Header().Get(headerSkippedFiles); got != "bad%20file.jpg" {
		t.Errorf("Unexpected skipped files header %q", got)
	}
}

func TestBatchWatermark_AbortPolicy(t *testing.T) {
	_, r, _ := newTestHandler(t, models.PolicyAbort)

	files := []upload{
		{imagesParamKey, "ok.png", pngBytes(t, 100, 100)},
		{imagesParamKey, "bad.jpg", []byte("garbage")},
		{watermarkParamKey, "logo.png", logoBytes(t)},
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/batch", files, nil))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", w.Code)
	}
	var resp models.APIResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Success || !bytes.Contains([]byte(resp.Error), []byte("bad.jpg")) {
		t.Errorf("Expected error naming bad.jpg, got %+v", resp)
	}
}

func TestBatchWatermark_BadRequests(t *testing.T) {
	_, r, _ := newTestHandler(t, models.PolicySkip)
	img := upload{imagesParamKey, "a.png", pngBytes(t, 50, 50)}
	logo := upload{watermarkParamKey, "logo.png", logoBytes(t)}

	tests := []struct {
		name   string
		files  []upload
		fields map[string]string
	}{
		{"no images", []upload{logo}, nil},
		{"no watermark", []upload{img}, nil},
		{"opacity out of range", []upload{img, logo}, map[string]string{"opacity": "300"}},
		{"scale out of range", []upload{img, logo}, map[string]string{"scale": "0.9"}},
		{"unknown anchor", []upload{img, logo}, map[string]string{"anchor": "left"}},
		{"resize too small", []upload{img, logo}, map[string]string{"resize_width": "50"}},
		{"watermark not an image", []upload{img, {watermarkParamKey, "logo.png", []byte("nope")}}, nil},
		{"too many images", []upload{img, img, img, img, img, img, logo}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, "/batch", tt.files, tt.fields))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestPreview(t *testing.T) {
	_, r, _ := newTestHandler(t, models.PolicySkip)

	files := []upload{
		{imageParamKey, "p.png", pngBytes(t, 300, 200)},
		{watermarkParamKey, "logo.png", logoBytes(t)},
	}
	fields := map[string]string{"x_offset": "-10", "y_offset": "15", "guide": "true"}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/preview", files, fields))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", ct)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	if err != nil || cfg.Width != 300 || cfg.Height != 200 {
		t.Errorf("Unexpected preview %+v, %v", cfg, err)
	}
}

func TestGetSettingsAndHealth(t *testing.T) {
	_, r, _ := newTestHandler(t, models.PolicySkip)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/settings", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Success bool            `json:"success"`
		Data    models.Settings `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data != models.DefaultSettings() {
		t.Errorf("Expected defaults, got %+v", resp.Data)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBuildParameters(t *testing.T) {
	h, _, _ := newTestHandler(t, models.PolicySkip)
	defaults := models.DefaultSettings()
	defaults.Anchor = models.AnchorCenter

	intp := func(v int) *int { return &v }
	strp := func(v string) *string { return &v }

	params, resize := h.buildParameters(&models.WatermarkRequest{}, defaults)
	if params.Opacity != 180 || params.Scale != 0.15 || params.Placement.Anchor != models.AnchorCenter || resize.Enabled {
		t.Errorf("Expected stored defaults, got %+v %+v", params, resize)
	}

	params, _ = h.buildParameters(&models.WatermarkRequest{XOffset: intp(12)}, defaults)
	if params.Placement.Anchor != models.AnchorNone || params.Placement.X != 12 {
		t.Errorf("Offsets should select explicit placement, got %+v", params.Placement)
	}

	params, _ = h.buildParameters(&models.WatermarkRequest{XOffset: intp(12), Anchor: strp("top-left")}, defaults)
	if params.Placement.Anchor != models.AnchorTopLeft {
		t.Errorf("Explicit anchor should win, got %+v", params.Placement)
	}

	_, resize = h.buildParameters(&models.WatermarkRequest{ResizeWidth: intp(640)}, defaults)
	if !resize.Enabled || resize.TargetWidth != 640 {
		t.Errorf("Expected resize to 640, got %+v", resize)
	}

	defaults.ResizeEnabled = true
	_, resize = h.buildParameters(&models.WatermarkRequest{ResizeWidth: intp(0)}, defaults)
	if resize.Enabled {
		t.Errorf("resize_width=0 should disable resizing, got %+v", resize)
	}
}
