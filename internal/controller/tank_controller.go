package controller

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"TankWatch.api/internal/middleware"
	"TankWatch.api/internal/models"
	"TankWatch.api/internal/prediction"
	"TankWatch.api/internal/service"
	"TankWatch.api/internal/utils"
)

// maxBodyBytes bounds every request body read by the controller.
const maxBodyBytes = 1 << 20

// TankController handles HTTP requests for tank readings and predictions.
type TankController struct {
	service *service.DataService
}

// NewTankController creates a new TankController.
func NewTankController(service *service.DataService) *TankController {
	return &TankController{
		service: service,
	}
}

// HandlePostData stores the reading set posted by the field device.
func (c *TankController) HandlePostData(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	set, err := models.DecodeTankSet(body)
	if err != nil {
		respondWithDecodeError(w, err)
		return
	}

	log.Printf("[%s] Received data from field device: %+v", middleware.RequestIDFrom(r.Context()), set)
	c.service.Ingest(r.Context(), set)
	utils.RespondWithJSON(w, http.StatusOK, models.Success)
}

// HandleGetData returns the latest reading set, zero-filled if none yet.
func (c *TankController) HandleGetData(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, c.service.Latest())
}

// HandleAdvancedPrediction returns cleaning forecasts for both tanks. Missing
// data is reported in the body, not through the status code.
func (c *TankController) HandleAdvancedPrediction(w http.ResponseWriter, r *http.Request) {
	predictions, err := c.service.Predictions()
	if errors.Is(err, prediction.ErrNoSensorData) {
		utils.RespondWithJSON(w, http.StatusOK, models.ErrorResponse{Error: models.NoSensorDataMessage})
		return
	}
	if err != nil {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeInternalServerError, err.Error(), nil, http.StatusInternalServerError))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, predictions)
}

// HandleUpdateTankStatus accepts a status update for a tank. Nothing is
// stored; the payload is logged and acknowledged.
func (c *TankController) HandleUpdateTankStatus(w http.ResponseWriter, r *http.Request) {
	tankID := mux.Vars(r)["tank_id"]

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	payload, err := models.DecodeObject(body)
	if err != nil {
		respondWithDecodeError(w, err)
		return
	}

	log.Printf("[%s] PATCH /api/tanks/%s with %v", middleware.RequestIDFrom(r.Context()), tankID, payload)
	utils.RespondWithJSON(w, http.StatusOK, models.Success)
}

// HandleNotification accepts a notification request. Nothing is sent; the
// payload is logged and acknowledged.
func (c *TankController) HandleNotification(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	payload, err := models.DecodeObject(body)
	if err != nil {
		respondWithDecodeError(w, err)
		return
	}

	log.Printf("[%s] POST /api/notifications with %v", middleware.RequestIDFrom(r.Context()), payload)
	utils.RespondWithJSON(w, http.StatusOK, models.Success)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeBadRequest, "error reading request body: "+err.Error(), nil, http.StatusBadRequest))
		return nil, false
	}
	return body, true
}

func respondWithDecodeError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeValidationFailed, "request body failed validation", verr.Fields, http.StatusUnprocessableEntity))
	case errors.Is(err, models.ErrMalformedBody):
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeBadRequest, "request body is not valid JSON", nil, http.StatusBadRequest))
	default:
		utils.RespondWithError(w, models.NewAPIError(models.ErrorCodeBadRequest, err.Error(), nil, http.StatusBadRequest))
	}
}
