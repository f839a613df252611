package event

// ClickRecordedName is the event name for a persisted chat click.
const ClickRecordedName = "click.recorded"

// ClickRecorded is raised once a click event is stored and is waiting for
// enrichment.
type ClickRecorded struct {
	Base
	ClickID       string `json:"click_id"`
	WidgetID      string `json:"widget_id"`
	ClientAddress string `json:"client_address"`
}

// NewClickRecorded creates a new ClickRecorded event.
func NewClickRecorded(clickID, widgetID, clientAddress string) ClickRecorded {
	return ClickRecorded{
		Base:          NewBase(clickID),
		ClickID:       clickID,
		WidgetID:      widgetID,
		ClientAddress: clientAddress,
	}
}

// EventName returns the event name.
func (e ClickRecorded) EventName() string {
	return ClickRecordedName
}
