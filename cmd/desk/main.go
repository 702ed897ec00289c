// The desk client is the local-clinic front-end: it drives the camera
// preview loop and classifies captured or uploaded images with the
// Teachable-Machine model, serving a small page on localhost instead of a
// native widget toolkit.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/AlfredoZC/DentiAI/internal/camera"
	"github.com/AlfredoZC/DentiAI/internal/config"
	"github.com/AlfredoZC/DentiAI/internal/repository/memory"
	"github.com/AlfredoZC/DentiAI/internal/service"
	"github.com/AlfredoZC/DentiAI/internal/vision"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // serves localhost only
	},
}

type deskApp struct {
	cfg       *config.Config
	diagnosis *service.DiagnosisService

	mu      sync.Mutex
	capture *camera.Capture
	cancel  context.CancelFunc
}

func main() {
	cfg := config.Load()

	var model vision.Model
	classifier, err := vision.NewClassifier(cfg.ClassifierModelPath, cfg.ClassifierMetadataPath)
	if err != nil {
		log.Printf("WARNING: classifier failed to load, diagnoses will be rejected: %v", err)
		model = vision.Unloaded{}
	} else {
		model = classifier
		log.Printf("Classifier loaded. Classes: %v", classifier.Labels())
	}
	defer model.Close()

	app := &deskApp{
		cfg:       cfg,
		diagnosis: service.NewDiagnosisService(model, memory.NewHistoryRepository(), cfg.UploadsDir),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	r.GET("/", app.index)
	r.GET("/ws", app.preview)
	r.POST("/camera/start", app.startCamera)
	r.POST("/camera/stop", app.stopCamera)
	r.POST("/capture", app.capturePhoto)
	r.POST("/classify", app.classifyUpload)

	srv := &http.Server{
		Addr:    "127.0.0.1:7860",
		Handler: r,
	}

	go func() {
		log.Println("Desk client on http://127.0.0.1:7860")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Camera release must happen on every shutdown path, including Ctrl-C
	// while the preview loop is mid-read.
	app.releaseCamera()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shut down: %v", err)
	}
}

func (a *deskApp) startCamera(c *gin.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.capture != nil {
		c.JSON(http.StatusOK, gin.H{"status": "already active"})
		return
	}

	dev, err := camera.OpenDevice(a.cfg.CameraDeviceID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not access the camera"})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.capture = camera.New(dev)
	a.cancel = cancel
	go a.capture.Run(ctx)

	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

func (a *deskApp) stopCamera(c *gin.Context) {
	a.releaseCamera()
	c.JSON(http.StatusOK, gin.H{"status": "inactive"})
}

func (a *deskApp) releaseCamera() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.capture == nil {
		return
	}
	a.cancel()
	a.capture.Stop()
	a.capture = nil
	a.cancel = nil
}

func (a *deskApp) currentCapture() *camera.Capture {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capture
}

// preview streams display-sized JPEG frames over the websocket until the
// client disconnects or the camera stops.
func (a *deskApp) preview(c *gin.Context) {
	capture := a.currentCapture()
	if capture == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "camera is not active"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("desk: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for frame := range capture.Frames() {
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
}

func (a *deskApp) capturePhoto(c *gin.Context) {
	capture := a.currentCapture()
	if capture == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "activate the camera first"})
		return
	}

	img, err := capture.TakePhoto()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not read a frame"})
		return
	}

	result, err := a.diagnosis.Classify(img)
	if err != nil {
		if errors.Is(err, vision.ErrModelNotLoaded) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "model is not loaded"})
			return
		}
		log.Printf("desk: classification failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "classification failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *deskApp) classifyUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided, use 'file' as the form field name"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer file.Close()

	img, err := vision.Decode(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image format, supported: JPEG, PNG"})
		return
	}

	result, err := a.diagnosis.Classify(img)
	if err != nil {
		if errors.Is(err, vision.ErrModelNotLoaded) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "model is not loaded"})
			return
		}
		log.Printf("desk: classification failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "classification failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *deskApp) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}

const indexPage = `<!DOCTYPE html>
<html lang="es">
<head><meta charset="utf-8"><title>Diagnóstico Dental con IA</title></head>
<body>
<h1>Diagnóstico Dental con Inteligencia Artificial</h1>
<button onclick="start()">Activar Cámara</button>
<button onclick="stop()">Desactivar Cámara</button>
<button onclick="capture()">Tomar Foto</button>
<form id="up"><input type="file" name="file"><button type="submit">Subir Imagen</button></form>
<div><img id="view" width="400" height="300"></div>
<pre id="out">Los resultados aparecerán aquí</pre>
<script>
let ws;
async function start() {
  await fetch('/camera/start', {method: 'POST'});
  ws = new WebSocket('ws://' + location.host + '/ws');
  ws.binaryType = 'blob';
  ws.onmessage = e => { document.getElementById('view').src = URL.createObjectURL(e.data); };
}
async function stop() {
  if (ws) ws.close();
  await fetch('/camera/stop', {method: 'POST'});
}
function show(r) {
  let t = 'DIAGNÓSTICO: ' + r.class + ' (' + r.confidence + '%)\n\n';
  for (const s of r.breakdown) t += s.label + ': ' + s.percent + '%\n';
  t += '\nRECOMENDACIÓN: ' + r.recommendation;
  document.getElementById('out').textContent = t;
}
async function capture() {
  const resp = await fetch('/capture', {method: 'POST'});
  const r = await resp.json();
  if (resp.ok) show(r); else document.getElementById('out').textContent = r.error;
}
document.getElementById('up').addEventListener('submit', async e => {
  e.preventDefault();
  const resp = await fetch('/classify', {method: 'POST', body: new FormData(e.target)});
  const r = await resp.json();
  if (resp.ok) show(r); else document.getElementById('out').textContent = r.error;
});
</script>
</body>
</html>`
