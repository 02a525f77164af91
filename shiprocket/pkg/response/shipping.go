package response

import "encoding/json"

type Auth struct {
	Token string `json:"token"`
}

// CreatedOrder is the subset of the create-order response the callers
// act on. ShipmentID keys every follow-up operation.
type CreatedOrder struct {
	Status     string `json:"status"`
	AWBCode    string `json:"awb_code"`
	CourierName string `json:"courier_name"`
	OrderID    int64  `json:"order_id"`
	ShipmentID int64  `json:"shipment_id"`
}

// Tracking is passed through verbatim; courier payloads vary too much
// to model field by field.
type Tracking struct {
	TrackingData json.RawMessage `json:"tracking_data"`
}

type Label struct {
	LabelURL     string `json:"label_url"`
	LabelCreated int64  `json:"label_created"`
}

type Pickup struct {
	PickupStatus   int64           `json:"pickup_status"`
	ResponseDetail json.RawMessage `json:"response"`
}

type Cancellation struct {
	Message string `json:"message"`
}
