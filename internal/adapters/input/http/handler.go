package http

import (
	"bufio"
	"context"
	"errors"
	"time"

	"talk-lmstudio/internal/domain"
	"talk-lmstudio/internal/ports/input"
	"talk-lmstudio/pkg/validator"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

// healthCheckTimeout bounds the model server probe of HealthCheck
const healthCheckTimeout = 5 * time.Second

var sseDone = []byte("data: [DONE]\n\n")

// HTTPHandler struct - Primary/Driving adapter for HTTP
type HTTPHandler struct {
	srv       input.GenerationService
	defaults  domain.GenerateParams
	validator validator.Validator
}

// New func - Creates new HTTP handler. defaults fill the sampling fields a request omits.
func New(srv input.GenerationService, defaults domain.GenerateParams) *HTTPHandler {
	return &HTTPHandler{
		srv:       srv,
		defaults:  defaults,
		validator: validator.New(),
	}
}

// HealthCheck func
// HealthCheck godoc
// @Summary Health check
// @Description Reports whether the model server answers a single model listing
// @Tags HEALTH
// @Produce json
// @Success 200 {object} ResponseBody
// @Failure 503 {object} ResponseBody
// @Router /health [get]
func (hdl *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	if err := hdl.srv.Ping(ctx); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(ResponseBody{Status: withMessage(ServiceUnavailable, err)})
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: ""})
}

// ListModels func
// ListModels godoc
// @Summary List models
// @Description List the models the model server can serve
// @Tags MODELS
// @Produce json
// @Success 200 {object} ResponseBody{data=[]ModelResponse}
// @Failure 502 {object} ResponseBody
// @Router /v1/models [get]
func (hdl *HTTPHandler) ListModels(c *fiber.Ctx) error {
	models, err := hdl.srv.ListModels(c.UserContext())
	if err != nil {
		logrus.Errorln(err)
		code, status := errorStatus(err)
		return c.Status(code).JSON(ResponseBody{Status: withMessage(status, err)})
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: toModelResponses(models)})
}

// Generate func
// Generate godoc
// @Summary Generate text
// @Description Run one chat completion. With stream=true the reply is sent as
// @Description server-sent events of {"text":...} terminated by [DONE].
// @Tags GENERATE
// @Accept application/json
// @Produce json
// @Produce text/event-stream
// @param Generate body GenerateRequest true "Generate"
// @Success 200 {object} ResponseBody{data=GenerateResponse}
// @Failure 400 {object} ResponseBody
// @Failure 502 {object} ResponseBody
// @Router /v1/generate [post]
func (hdl *HTTPHandler) Generate(c *fiber.Ctx) error {
	var request GenerateRequest
	if err := c.BodyParser(&request); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		msg := ResponseBody{
			Status: BadRequest,
		}
		msg.Status.Message = validator.Messages(err)
		return c.Status(fiber.StatusBadRequest).JSON(msg)
	}

	params := request.ToParams(hdl.defaults)
	if params.Stream {
		return hdl.stream(c, request.Prompt, params)
	}

	text, err := hdl.srv.Complete(c.UserContext(), request.Prompt, params)
	if err != nil {
		logrus.Errorln(err)
		code, status := errorStatus(err)
		return c.Status(code).JSON(ResponseBody{Status: withMessage(status, err)})
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: GenerateResponse{Text: text}})
}

// stream writes tokens as server-sent events. The generation is cancelled when
// the client goes away and a write fails.
func (hdl *HTTPHandler) stream(c *fiber.Ctx, prompt string, params domain.GenerateParams) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		for token := range hdl.srv.Stream(ctx, prompt, params) {
			if token.IsFinal {
				if token.Err != nil {
					writeEvent(w, StreamEvent{Error: token.Err.Error()})
				}
				w.Write(sseDone)
				w.Flush()
				return
			}
			if err := writeEvent(w, StreamEvent{Text: token.Text}); err != nil {
				logrus.Warnf("Client disconnected during stream: %v", err)
				return
			}
		}
	}))
	return nil
}

// writeEvent writes one data line and flushes it to the client
func writeEvent(w *bufio.Writer, event StreamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	w.WriteString("data: ")
	w.Write(payload)
	w.WriteString("\n\n")
	return w.Flush()
}

// errorStatus maps a generation failure to an HTTP status code and body
func errorStatus(err error) (int, Status) {
	switch {
	case errors.Is(err, domain.ErrInvalidParams):
		return fiber.StatusBadRequest, BadRequest
	case errors.Is(err, domain.ErrLMStudioTimeout):
		return fiber.StatusGatewayTimeout, GatewayTimeout
	case errors.Is(err, domain.ErrLMStudioUnavailable):
		return fiber.StatusServiceUnavailable, ServiceUnavailable
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrUnexpectedStatus),
		errors.Is(err, domain.ErrResponseParse):
		return fiber.StatusBadGateway, BadGateway
	default:
		return fiber.StatusInternalServerError, InternalServerError
	}
}
