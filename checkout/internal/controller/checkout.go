package controller

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kirananta/storefront/checkout/internal/otel"
	"github.com/kirananta/storefront/checkout/internal/service"
	inErrors "github.com/kirananta/storefront/internal/errors"
	inHttp "github.com/kirananta/storefront/internal/http"
	"github.com/kirananta/storefront/internal/log"
	"github.com/kirananta/storefront/internal/session"
)

type CheckoutController struct {
	service *service.CheckoutService
}

func AttachCheckoutController(mux *mux.Router, service *service.CheckoutService) {
	controller := CheckoutController{service: service}

	router := mux.PathPrefix("/checkout/step").Subrouter()
	router.HandleFunc("", controller.CurrentStep).Methods(http.MethodGet)
	router.HandleFunc("/next", controller.NextStep).Methods(http.MethodPost)
	router.HandleFunc("/back", controller.PrevStep).Methods(http.MethodPost)
}

func (t CheckoutController) CurrentStep(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController CurrentStep")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController CurrentStep").
		Logger()

	sess, err := session.FromContext(c)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "resolving current step").Logger()
	c = logger.WithContext(c)
	step, err := t.service.CurrentStep(c, sess)
	if err != nil {
		err = fmt.Errorf("failed resolving current step with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFrom(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KeyStep, string(step)).Msgf("resolved current step=%s", step)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully resolved current step",
		"data": map[string]interface{}{
			"step": step,
		},
	})
}

func (t CheckoutController) NextStep(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController NextStep")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController NextStep").
		Logger()

	sess, err := session.FromContext(c)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "advancing step").Logger()
	logger.Info().Msg("advancing step")
	c = logger.WithContext(c)
	step, err := t.service.NextStep(c, sess)
	if err != nil {
		err = fmt.Errorf("failed advancing step with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFrom(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KeyStep, string(step)).Msgf("advanced to step=%s", step)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully advanced step",
		"data": map[string]interface{}{
			"step": step,
		},
	})
}

func (t CheckoutController) PrevStep(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController PrevStep")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController PrevStep").
		Logger()

	sess, err := session.FromContext(c)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "stepping back").Logger()
	logger.Info().Msg("stepping back")
	c = logger.WithContext(c)
	step, err := t.service.PrevStep(c, sess)
	if err != nil {
		err = fmt.Errorf("failed stepping back with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFrom(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Str(log.KeyStep, string(step)).Msgf("stepped back to step=%s", step)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully stepped back",
		"data": map[string]interface{}{
			"step": step,
		},
	})
}
