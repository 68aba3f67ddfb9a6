package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/httpresp"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/objectstore"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/voice"
)

const previewPrefix = "voice-previews"

type VoiceHandler struct {
	voice   *voice.Service
	objects *objectstore.Store
	urlTTL  time.Duration
	log     *zap.Logger
}

func NewVoiceHandler(
	voice *voice.Service,
	objects *objectstore.Store,
	urlTTL time.Duration,
	log *zap.Logger,
) *VoiceHandler {
	return &VoiceHandler{
		voice:   voice,
		objects: objects,
		urlTTL:  urlTTL,
		log:     log,
	}
}

type VoicePreviewRequest struct {
	Text    string `json:"text" binding:"required,max=500"`
	VoiceID string `json:"voiceId"`
}

func (h *VoiceHandler) List(c *gin.Context) {
	voices, err := h.voice.ListVoices(c.Request.Context())
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	httpresp.List(c, voices)
}

func (h *VoiceHandler) Get(c *gin.Context) {
	v, err := h.voice.GetVoice(c.Request.Context(), c.Param("id"))
	if errors.Is(err, voice.ErrVoiceNotFound) {
		httperr.NotFound(c, "voice_not_found", "Voice not found")
		return
	}
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	httpresp.OK(c, v)
}

// Preview renders the text, stores the audio and hands back a
// short-lived download link.
func (h *VoiceHandler) Preview(c *gin.Context) {
	var req VoicePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}
	if !h.objects.Enabled() {
		httperr.Write(c, http.StatusServiceUnavailable, "object_store_disabled", "File storage is not configured")
		return
	}

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = voice.DefaultVoiceID
	}

	ctx := c.Request.Context()
	audio, err := h.voice.GenerateSpeech(ctx, req.Text, voiceID)
	if err != nil {
		h.upstreamError(c, err)
		return
	}

	key := objectstore.Key(previewPrefix, ".mp3")
	if err := h.objects.Put(ctx, key, "audio/mpeg", audio); err != nil {
		respondError(c, h.log, err)
		return
	}

	url, err := h.objects.PresignGet(ctx, key, h.urlTTL)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.URL(c, url)
}

func (h *VoiceHandler) upstreamError(c *gin.Context, err error) {
	h.log.Error("voice provider request failed", zap.Error(err))
	httperr.Write(c, http.StatusBadGateway, "voice_provider_error", "Voice provider request failed")
}
