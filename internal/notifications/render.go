package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"strconv"
	"strings"

	"github.com/BearBump/CargoFlow/internal/models"
)

const (
	notSpecified = "Not specified"
	notScheduled = "Not scheduled"
	notAssigned  = "Not assigned"
	notGenerated = "Not generated"

	deliveryTimeLayout = "2006-01-02 15:04"
)

// Message is a rendered notification, ready for Dispatcher.Notify.
type Message struct {
	Subject string
	Body    string
	IsHTML  bool
}

type row struct {
	Label string
	Value string
}

var shipmentTmpl = template.Must(template.New("shipment").Parse(`<p>{{.Header}}</p>
<table style="border-collapse:collapse;font-family:sans-serif">
{{- range .Rows}}
<tr><th style="text-align:left;padding:4px 12px;border:1px solid #ddd">{{.Label}}</th><td style="padding:4px 12px;border:1px solid #ddd">{{.Value}}</td></tr>
{{- end}}
</table>
`))

// RenderShipment renders an HTML table. route and vendor are the resolved
// assignments (nil when unassigned); previous is the status before an update.
func RenderShipment(kind models.ChangeKind, sh *models.Shipment, route *models.Route, vendor *models.Vendor, previous models.ShipmentStatus) Message {
	rows := []row{
		{"Shipment ID", models.ShipmentDisplayID(sh.ID)},
		{"Origin", orText(sh.Origin, notSpecified)},
		{"Destination", orText(sh.Destination, notSpecified)},
		{"Status", orText(sh.Status.String(), notSpecified)},
	}
	if kind == models.ChangeUpdated && previous != "" && previous != sh.Status {
		rows = append(rows, row{"Previous Status", previous.String()})
	}

	eta := notScheduled
	if sh.EstimatedDelivery != nil {
		eta = sh.EstimatedDelivery.String()
	}
	rows = append(rows,
		row{"Estimated Delivery", eta},
		row{"Shipment Code", orText(sh.ShipmentCode, notGenerated)},
		row{"Assigned Route", routeLabel(sh.RouteID, route)},
		row{"Assigned Vendor", vendorLabel(sh.VendorID, vendor)},
	)

	msg := Message{
		Subject: fmt.Sprintf("Shipment %s - %s", kind, models.ShipmentDisplayID(sh.ID)),
		IsHTML:  true,
	}

	var buf bytes.Buffer
	err := shipmentTmpl.Execute(&buf, struct {
		Header string
		Rows   []row
	}{shipmentHeader(kind), rows})
	if err != nil {
		slog.Error("render shipment notification", "shipment_id", sh.ID, "err", err)
		msg.Body = paragraphs(shipmentHeader(kind), rows)
		msg.IsHTML = false
		return msg
	}
	msg.Body = buf.String()
	return msg
}

// RenderCargo renders a plain-text message. sh is the linked shipment, if any.
func RenderCargo(kind models.ChangeKind, c *models.Cargo, sh *models.Shipment) Message {
	weight := formatNumber(c.Weight)
	if c.WeightUnit != "" {
		weight += " " + c.WeightUnit
	}
	volume := notSpecified
	if c.Volume != nil {
		volume = formatNumber(*c.Volume)
	}

	linked, code := notAssigned, notGenerated
	if c.ShipmentID != nil {
		linked = models.ShipmentDisplayID(*c.ShipmentID)
	}
	if sh != nil && sh.ShipmentCode != "" {
		code = sh.ShipmentCode
	}

	rows := []row{
		{"Cargo ID", strconv.FormatInt(c.ID, 10)},
		{"Type", orText(c.Type, notSpecified)},
		{"Weight", weight},
		{"Value", "$" + formatNumber(c.Value)},
		{"Volume", volume},
		{"Description", orText(c.Description, notSpecified)},
		{"Linked Shipment", linked},
		{"Shipment Code", code},
	}

	var header string
	switch kind {
	case models.ChangeCreated:
		header = "A new cargo record was created."
	case models.ChangeDeleted:
		header = "A cargo record was deleted."
	default:
		header = "A cargo record was updated."
	}

	return Message{
		Subject: fmt.Sprintf("Cargo %s - #%d", kind, c.ID),
		Body:    paragraphs(header, rows),
	}
}

// RenderDelivery renders a plain-text message. previousStatus is only shown
// on updates that changed it.
func RenderDelivery(kind models.ChangeKind, d *models.Delivery, sh *models.Shipment, previousStatus string) Message {
	rows := []row{
		{"Delivery ID", strconv.FormatInt(d.ID, 10)},
		{"Recipient", orText(d.Recipient, notSpecified)},
		{"Status", orText(d.Status, notSpecified)},
	}
	if kind == models.ChangeUpdated && previousStatus != "" && previousStatus != d.Status {
		rows = append(rows, row{"Previous Status", previousStatus})
	}

	completed := notScheduled
	if d.ActualDeliveryDate != nil {
		completed = d.ActualDeliveryDate.Format(deliveryTimeLayout)
	}
	rows = append(rows, row{"Actual Delivery", completed})

	shipment, dest, status := notAssigned, notSpecified, notSpecified
	if d.ShipmentID != nil {
		shipment = models.ShipmentDisplayID(*d.ShipmentID)
	}
	if sh != nil {
		dest = orText(sh.Destination, notSpecified)
		status = orText(sh.Status.String(), notSpecified)
	}
	rows = append(rows,
		row{"Shipment", shipment},
		row{"Shipment Destination", dest},
		row{"Shipment Status", status},
	)

	return Message{
		Subject: fmt.Sprintf("Delivery %s - #%d", kind, d.ID),
		Body:    paragraphs(fmt.Sprintf("Delivery was %s.", strings.ToLower(string(kind))), rows),
	}
}

func shipmentHeader(kind models.ChangeKind) string {
	switch kind {
	case models.ChangeCreated:
		return "A new shipment was created."
	case models.ChangeDeleted:
		return "A shipment was deleted."
	}
	return "A shipment was updated."
}

func routeLabel(id *int64, r *models.Route) string {
	if id == nil {
		return notAssigned
	}
	if r == nil {
		return fmt.Sprintf("#%d", *id)
	}
	return fmt.Sprintf("#%d %s -> %s", r.ID, orText(r.OriginPort, "?"), orText(r.DestinationPort, "?"))
}

func vendorLabel(id *int64, v *models.Vendor) string {
	if id == nil {
		return notAssigned
	}
	if v == nil || v.Name == "" {
		return fmt.Sprintf("#%d", *id)
	}
	return v.Name
}

func paragraphs(header string, rows []row) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(r.Label)
		b.WriteString(": ")
		b.WriteString(r.Value)
		b.WriteByte('\n')
	}
	return b.String()
}

func orText(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
