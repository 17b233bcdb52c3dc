package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/elemahana/farm-api/internal/apperr"
	"github.com/elemahana/farm-api/internal/domain"
)

// Crop inputs are the representative owner-id resource: every record carries
// the creating user's id and the ownership gates key off it.

type cropInputReq struct {
	Date         string `json:"date"`
	Type         string `json:"type"`
	Field        string `json:"field"`
	CropType     string `json:"cropType"`
	Variety      string `json:"variety"`
	ChemicalName string `json:"chemicalName"`
	// pointers so presence is checked, not falsiness: zero is a legal value
	// for both quantity and unit cost
	Quantity *float64 `json:"quantity"`
	UnitCost *float64 `json:"unitCost"`
	Remarks  string   `json:"remarks"`
}

func (in *cropInputReq) validate() error {
	if in.Type != domain.CropInputPlanting && in.Type != domain.CropInputAgrochemical {
		return apperr.Validation("Invalid type provided")
	}
	var missing []string
	if in.Date == "" {
		missing = append(missing, "date")
	}
	if in.Field == "" {
		missing = append(missing, "field")
	}
	if in.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if in.UnitCost == nil {
		missing = append(missing, "unitCost")
	}
	if in.Remarks == "" {
		missing = append(missing, "remarks")
	}
	switch in.Type {
	case domain.CropInputPlanting:
		if in.CropType == "" {
			missing = append(missing, "cropType")
		}
		if in.Variety == "" {
			missing = append(missing, "variety")
		}
	case domain.CropInputAgrochemical:
		if in.ChemicalName == "" {
			missing = append(missing, "chemicalName")
		}
	}
	if len(missing) > 0 {
		return apperr.Validation("Missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

func (h *Handler) CreateCropInput(c *gin.Context) {
	var in cropInputReq
	if err := c.ShouldBindJSON(&in); err != nil {
		Fail(c, apperr.Validation("invalid json").WithCause(err))
		return
	}
	if err := in.validate(); err != nil {
		Fail(c, err)
		return
	}
	u := CurrentUser(c)
	rec := domain.CropInput{
		UserID:       u.ID,
		Date:         in.Date,
		Type:         in.Type,
		Field:        in.Field,
		CropType:     in.CropType,
		Variety:      in.Variety,
		ChemicalName: in.ChemicalName,
		Quantity:     *in.Quantity,
		UnitCost:     *in.UnitCost,
		Remarks:      in.Remarks,
		CreatedAt:    time.Now().UTC(),
	}
	id, err := h.Store.InsertResource(c.Request.Context(), domain.CollCropInputs, rec)
	if err != nil {
		Fail(c, err)
		return
	}
	rec.ID = id
	Success(c, http.StatusCreated, rec)
}

func (h *Handler) ListCropInputs(c *gin.Context) {
	var recs []domain.CropInput
	if err := h.Store.ListResources(c.Request.Context(), domain.CollCropInputs, ListFilter(c), &recs); err != nil {
		Fail(c, err)
		return
	}
	Success(c, http.StatusOK, gin.H{"count": len(recs), "data": recs})
}

func (h *Handler) GetCropInput(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		Fail(c, apperr.Validation("Invalid ID format"))
		return
	}
	doc, err := h.Store.FindResourceByID(c.Request.Context(), domain.CollCropInputs, id)
	if err != nil {
		Fail(c, err)
		return
	}
	if doc == nil {
		Fail(c, apperr.NotFound("Crop input"))
		return
	}
	Success(c, http.StatusOK, doc)
}

func (h *Handler) UpdateCropInput(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		Fail(c, apperr.Validation("Invalid ID format"))
		return
	}
	var in cropInputReq
	if err := c.ShouldBindJSON(&in); err != nil {
		Fail(c, apperr.Validation("invalid json").WithCause(err))
		return
	}
	if err := in.validate(); err != nil {
		Fail(c, err)
		return
	}
	// only whitelisted fields reach the update document
	fields := bson.M{
		"date": in.Date, "type": in.Type, "field": in.Field,
		"quantity": *in.Quantity, "unitCost": *in.UnitCost, "remarks": in.Remarks,
	}
	if in.Type == domain.CropInputPlanting {
		fields["cropType"] = in.CropType
		fields["variety"] = in.Variety
	} else {
		fields["chemicalName"] = in.ChemicalName
	}
	matched, err := h.Store.UpdateResourceByID(c.Request.Context(), domain.CollCropInputs, id, fields)
	if err != nil {
		Fail(c, err)
		return
	}
	if !matched {
		Fail(c, apperr.NotFound("Crop input"))
		return
	}
	Success(c, http.StatusOK, gin.H{"message": "Crop input updated successfully"})
}

func (h *Handler) DeleteCropInput(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		Fail(c, apperr.Validation("Invalid ID format"))
		return
	}
	deleted, err := h.Store.DeleteResourceByID(c.Request.Context(), domain.CollCropInputs, id)
	if err != nil {
		Fail(c, err)
		return
	}
	if !deleted {
		Fail(c, apperr.NotFound("Crop input"))
		return
	}
	Success(c, http.StatusOK, gin.H{"message": "Crop input deleted successfully"})
}
