package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

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

type ShippingController struct {
	service *service.ShippingService
}

func AttachShippingController(mux *mux.Router, service *service.ShippingService) {
	controller := ShippingController{service: service}

	router := mux.PathPrefix("/checkout/shipping").Subrouter()
	router.HandleFunc("", controller.Options).Methods(http.MethodGet)
	router.HandleFunc("/select", controller.Select).Methods(http.MethodPost)
	router.HandleFunc("/addresses", controller.CreateAddress).Methods(http.MethodPost)
	router.HandleFunc("/addresses/{addressId}", controller.UpdateAddress).Methods(http.MethodPut)
	router.HandleFunc("/addresses/{addressId}", controller.DeleteAddress).
		Methods(http.MethodDelete)
	router.HandleFunc("/addresses/{addressId}/default", controller.SetDefaultAddress).
		Methods(http.MethodPost)
}

func (t ShippingController) Options(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShippingController Options")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShippingController Options").
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

	logger = logger.With().Str(log.KeyProcess, "fetching shipping options").Logger()
	logger.Info().Msg("fetching shipping options")
	c = logger.WithContext(c)
	options, err := t.service.Options(c, sess)
	if err != nil {
		err = fmt.Errorf("failed fetching shipping options with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFrom(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("fetched shipping options")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully fetched shipping options",
		"data": map[string]interface{}{
			"shipping": options,
		},
	})
}

func (t ShippingController) Select(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShippingController Select")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShippingController Select").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	reqBody := request.SelectShipping{}
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
		Str(log.KeyProcess, "binding shipping selection").
		Int64(log.KeyFeeID, reqBody.FeeID).
		Logger()
	logger.Info().Msg("binding shipping selection")
	c = logger.WithContext(c)
	draft, err := t.service.Select(c, sess, reqBody)
	if err != nil {
		err = fmt.Errorf("failed binding shipping selection with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFrom(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("bound shipping selection")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully bound shipping selection",
		"data": map[string]interface{}{
			"draft": draft,
		},
	})
}

func (t ShippingController) CreateAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShippingController CreateAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShippingController CreateAddress").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	reqBody := request.Address{}
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

	sess, err := requireAuthenticated(c, w, logger)
	if err != nil {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "creating address").Logger()
	logger.Info().Msg("creating address")
	c = logger.WithContext(c)
	addresses, err := t.service.CreateAddress(c, sess, reqBody)
	if err != nil {
		err = fmt.Errorf("failed creating address with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFrom(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("created address")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "successfully created address",
		"data": map[string]interface{}{
			"addresses": addresses,
		},
	})
}

func (t ShippingController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShippingController UpdateAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShippingController UpdateAddress").
		Str(log.KeyProcess, "validating addressId").
		Logger()

	addressID, err := strconv.ParseInt(mux.Vars(r)["addressId"], 10, 64)
	if err != nil {
		err = fmt.Errorf("failed validating addressId with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Int64(log.KeyAddressID, addressID).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding requestbody").Logger()
	reqBody := request.Address{}
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

	sess, err := requireAuthenticated(c, w, logger)
	if err != nil {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "updating address").Logger()
	logger.Info().Msgf("updating addressId=%d", addressID)
	c = logger.WithContext(c)
	addresses, err := t.service.UpdateAddress(c, sess, addressID, reqBody)
	if err != nil {
		err = fmt.Errorf("failed updating addressId=%d with error=%w", addressID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFrom(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("updated addressId=%d", addressID)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully updated address",
		"data": map[string]interface{}{
			"addresses": addresses,
		},
	})
}

func (t ShippingController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShippingController DeleteAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShippingController DeleteAddress").
		Str(log.KeyProcess, "validating addressId").
		Logger()

	addressID, err := strconv.ParseInt(mux.Vars(r)["addressId"], 10, 64)
	if err != nil {
		err = fmt.Errorf("failed validating addressId with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Int64(log.KeyAddressID, addressID).Logger()

	sess, err := requireAuthenticated(c, w, logger)
	if err != nil {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "deleting address").Logger()
	logger.Info().Msgf("deleting addressId=%d", addressID)
	c = logger.WithContext(c)
	addresses, err := t.service.DeleteAddress(c, sess, addressID)
	if err != nil {
		err = fmt.Errorf("failed deleting addressId=%d with error=%w", addressID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFrom(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("deleted addressId=%d", addressID)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully deleted address",
		"data": map[string]interface{}{
			"addresses": addresses,
		},
	})
}

func (t ShippingController) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ShippingController SetDefaultAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ShippingController SetDefaultAddress").
		Str(log.KeyProcess, "validating addressId").
		Logger()

	addressID, err := strconv.ParseInt(mux.Vars(r)["addressId"], 10, 64)
	if err != nil {
		err = fmt.Errorf("failed validating addressId with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Int64(log.KeyAddressID, addressID).Logger()

	sess, err := requireAuthenticated(c, w, logger)
	if err != nil {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "setting default address").Logger()
	logger.Info().Msgf("setting default addressId=%d", addressID)
	c = logger.WithContext(c)
	addresses, err := t.service.SetDefaultAddress(c, sess, addressID)
	if err != nil {
		err = fmt.Errorf("failed setting default addressId=%d with error=%w", addressID, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCodeFrom(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("set default addressId=%d", addressID)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully set default address",
		"data": map[string]interface{}{
			"addresses": addresses,
		},
	})
}

// requireAuthenticated resolves the session and rejects guests. The
// address book only exists for logged-in shoppers.
func requireAuthenticated(
	c context.Context,
	w http.ResponseWriter,
	logger zerolog.Logger,
) (session.Session, error) {
	sess, err := session.FromContext(c)
	if err == nil && !sess.Authenticated {
		err = inErrors.ErrLoginRequired
	}
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    err.Error(),
			"data": map[string]interface{}{
				"redirect": "/login",
			},
		})
		return session.Session{}, err
	}
	return sess, nil
}
