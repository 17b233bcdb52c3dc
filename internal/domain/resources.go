package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names for the resource modules served by this API.
const (
	CollUsers      = "users"
	CollCropInputs = "cropinputs"
	CollFeedback   = "feedback"
)

const (
	CropInputPlanting     = "Planting"
	CropInputAgrochemical = "Agrochemical"
)

// CropInput is a per-user field activity record. Planting entries carry
// cropType/variety, Agrochemical entries carry chemicalName.
type CropInput struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId"        json:"userId"`
	Date         string             `bson:"date"          json:"date"`
	Type         string             `bson:"type"          json:"type"`
	Field        string             `bson:"field"         json:"field"`
	CropType     string             `bson:"cropType,omitempty"     json:"cropType,omitempty"`
	Variety      string             `bson:"variety,omitempty"      json:"variety,omitempty"`
	ChemicalName string             `bson:"chemicalName,omitempty" json:"chemicalName,omitempty"`
	Quantity     float64            `bson:"quantity"      json:"quantity"`
	UnitCost     float64            `bson:"unitCost"      json:"unitCost"`
	Remarks      string             `bson:"remarks"       json:"remarks"`
	CreatedAt    time.Time          `bson:"createdAt"     json:"created_at"`
}

// Feedback is submitted by visitors who may not hold an account; ownership is
// correlated by email rather than a user reference.
type Feedback struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name"      json:"name"`
	Email     string             `bson:"email"     json:"email"`
	Feedback  string             `bson:"feedback"  json:"feedback"`
	Rating    int                `bson:"rating"    json:"rating"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}
