package controller

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/kirananta/storefront/checkout/internal/otel"
	"github.com/kirananta/storefront/checkout/internal/service"
	"github.com/kirananta/storefront/checkout/pkg/request"
	inErrors "github.com/kirananta/storefront/internal/errors"
	inHttp "github.com/kirananta/storefront/internal/http"
	"github.com/kirananta/storefront/internal/log"
	"github.com/kirananta/storefront/internal/session"
)

type CouponController struct {
	service *service.CouponService
}

func AttachCouponController(mux *mux.Router, service *service.CouponService) {
	controller := CouponController{service: service}

	router := mux.PathPrefix("/checkout/coupons").Subrouter()
	router.HandleFunc("", controller.Apply).Methods(http.MethodPost)
	router.HandleFunc("", controller.Remove).Methods(http.MethodDelete)
}

func (t CouponController) Apply(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CouponController Apply")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CouponController Apply").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	reqBody := request.ApplyCoupon{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating requestbody").Logger()
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

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

	logger = logger.With().
		Str(log.KeyProcess, "applying coupon").
		Str(log.KeyCouponCode, reqBody.Code).
		Logger()
	logger.Info().Msg("applying coupon")
	c = logger.WithContext(c)
	coupon, err := t.service.Apply(c, sess, reqBody.Code)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		body := map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFrom(err),
			"message":    err.Error(),
		}
		if stdErrors.Is(err, inErrors.ErrLoginRequired) {
			body["data"] = map[string]interface{}{"redirect": "/login"}
		}
		inHttp.WriteJsonResponse(c, w, map[string]string{}, body)
		return
	}
	logger.Info().Msg("applied coupon")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully applied coupon",
		"data": map[string]interface{}{
			"coupon": coupon,
		},
	})
}

func (t CouponController) Remove(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CouponController Remove")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CouponController Remove").
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

	logger = logger.With().Str(log.KeyProcess, "removing coupon").Logger()
	logger.Info().Msg("removing coupon")
	c = logger.WithContext(c)
	if err := t.service.Remove(c, sess); err != nil {
		err = fmt.Errorf("failed removing coupon with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFrom(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("removed coupon")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully removed coupon",
	})
}
