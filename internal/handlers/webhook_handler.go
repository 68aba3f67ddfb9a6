package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/httpresp"
	"github.com/BruksfildServices01/micro8gents-api/internal/metrics"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/billing"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/telephony"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/workflow"
	"github.com/BruksfildServices01/micro8gents-api/internal/usecase/call"
	"github.com/BruksfildServices01/micro8gents-api/internal/usecase/subscription"
)

const maxWebhookBody = 64 << 10

// ======================================================
// HANDLER
// ======================================================

type WebhookHandler struct {
	telephony *telephony.Service
	inbound   *call.HandleInbound
	speech    *call.ForwardSpeech

	workflowSecret string
	workflowEvent  *call.ApplyWorkflowEvent

	billing      *billing.Service
	applyBilling *subscription.ApplyWebhook

	log *zap.Logger
}

func NewWebhookHandler(
	telephony *telephony.Service,
	inbound *call.HandleInbound,
	speech *call.ForwardSpeech,
	workflowSecret string,
	workflowEvent *call.ApplyWorkflowEvent,
	billing *billing.Service,
	applyBilling *subscription.ApplyWebhook,
	log *zap.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		telephony:      telephony,
		inbound:        inbound,
		speech:         speech,
		workflowSecret: workflowSecret,
		workflowEvent:  workflowEvent,
		billing:        billing,
		applyBilling:   applyBilling,
		log:            log,
	}
}

// ======================================================
// TWILIO
// ======================================================

// Twilio answers an inbound call. Once the signature is accepted Twilio
// always gets TwiML back, an apology when anything went wrong.
func (h *WebhookHandler) Twilio(c *gin.Context) {
	if !h.verifyTwilio(c) {
		return
	}
	form := c.Request.PostForm

	cl, b, err := h.inbound.Execute(c.Request.Context(), call.InboundInput{
		From:    form.Get("From"),
		To:      form.Get("To"),
		CallSID: form.Get("CallSid"),
	})
	if err != nil {
		h.log.Warn("inbound call failed",
			zap.String("to", form.Get("To")),
			zap.String("call_sid", form.Get("CallSid")),
			zap.Error(err),
		)
		metrics.WebhookEvents.WithLabelValues("twilio", "failed").Inc()
		writeTwiML(c, h.telephony.ErrorTwiML())
		return
	}

	h.log.Info("inbound call",
		zap.Uint("call_id", cl.ID),
		zap.Uint("business_id", b.ID),
	)
	metrics.WebhookEvents.WithLabelValues("twilio", "applied").Inc()
	writeTwiML(c, h.telephony.GreetingTwiML(b.BusinessName))
}

func (h *WebhookHandler) TwilioGather(c *gin.Context) {
	if !h.verifyTwilio(c) {
		return
	}
	form := c.Request.PostForm

	err := h.speech.Execute(c.Request.Context(), call.SpeechInput{
		To:      form.Get("To"),
		CallSID: form.Get("CallSid"),
		Speech:  form.Get("SpeechResult"),
	})
	if err != nil {
		h.log.Warn("forward speech failed", zap.String("call_sid", form.Get("CallSid")), zap.Error(err))
		metrics.WebhookEvents.WithLabelValues("twilio", "failed").Inc()
		writeTwiML(c, h.telephony.ErrorTwiML())
		return
	}

	metrics.WebhookEvents.WithLabelValues("twilio", "applied").Inc()
	writeTwiML(c, h.telephony.GatherReplyTwiML())
}

func (h *WebhookHandler) verifyTwilio(c *gin.Context) bool {
	if err := c.Request.ParseForm(); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid form body")
		return false
	}
	if !h.telephony.SignsRequests() {
		return true
	}

	signature := c.GetHeader("X-Twilio-Signature")
	if h.telephony.ValidateSignature(requestURL(c), c.Request.PostForm, signature) {
		return true
	}

	metrics.WebhookEvents.WithLabelValues("twilio", "rejected").Inc()
	httperr.Forbidden(c, "invalid_signature", "Invalid webhook signature")
	return false
}

// requestURL rebuilds the public URL Twilio signed, honouring a TLS
// terminating proxy in front of the service.
func requestURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = strings.TrimSpace(strings.Split(p, ",")[0])
	}

	host := c.Request.Host
	if fh := c.GetHeader("X-Forwarded-Host"); fh != "" {
		host = strings.TrimSpace(strings.Split(fh, ",")[0])
	}

	return scheme + "://" + host + c.Request.URL.RequestURI()
}

func writeTwiML(c *gin.Context, body []byte) {
	c.Data(http.StatusOK, "text/xml; charset=utf-8", body)
}

// ======================================================
// N8N
// ======================================================

type WorkflowEventData struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript"`
	Recording  string `json:"recording"`
}

type WorkflowEventRequest struct {
	CallID json.Number       `json:"callId" binding:"required"`
	Action string            `json:"action" binding:"required"`
	Data   WorkflowEventData `json:"data"`
}

func (h *WebhookHandler) N8n(c *gin.Context) {
	if h.workflowSecret != "" {
		got := c.GetHeader(workflow.SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.workflowSecret)) != 1 {
			metrics.WebhookEvents.WithLabelValues("n8n", "rejected").Inc()
			httperr.Unauthorized(c, "invalid_webhook_secret", "Invalid webhook secret")
			return
		}
	}

	var req WorkflowEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	callID, err := strconv.ParseUint(req.CallID.String(), 10, 64)
	if err != nil || callID == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid call ID")
		return
	}

	_, err = h.workflowEvent.Execute(c.Request.Context(), call.WorkflowEventInput{
		CallID:     uint(callID),
		Action:     req.Action,
		Type:       req.Data.Type,
		Transcript: req.Data.Transcript,
		Recording:  req.Data.Recording,
	})
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("n8n", "failed").Inc()
		respondError(c, h.log, err)
		return
	}

	metrics.WebhookEvents.WithLabelValues("n8n", "applied").Inc()
	httpresp.Message(c, http.StatusOK, "Webhook processed successfully")
}

// ======================================================
// STRIPE
// ======================================================

func (h *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Could not read request body")
		return
	}

	ev, err := h.billing.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("stripe", "rejected").Inc()
		switch {
		case errors.Is(err, billing.ErrMissingSignature):
			httperr.BadRequest(c, "missing_signature", "Missing Stripe signature")
		case errors.Is(err, billing.ErrWebhookSignature):
			httperr.BadRequest(c, "invalid_signature", "Invalid webhook signature")
		default:
			httperr.BadRequest(c, "invalid_payload", "Invalid webhook payload")
		}
		return
	}

	outcome, err := h.applyBilling.Execute(c.Request.Context(), ev)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues("stripe", "failed").Inc()
		respondError(c, h.log, err)
		return
	}

	h.log.Info("stripe webhook",
		zap.String("event_id", ev.ID),
		zap.String("type", ev.Type),
		zap.String("outcome", outcome),
	)
	metrics.WebhookEvents.WithLabelValues("stripe", outcome).Inc()
	c.JSON(http.StatusOK, gin.H{"received": true})
}
