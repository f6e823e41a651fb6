// Package weather carries the already-resolved conditions shown in the
// overlay's weather block. Retrieval belongs to an external collaborator.
package weather

import "fmt"

// Data describes the conditions at the tagged location. A nil *Data means
// the weather column is omitted from layout entirely.
type Data struct {
	TempC         int
	TempF         int
	ConditionCode int
	Description   string
	Icon          string // provider icon code, e.g. "04d"
}

// iconBase serves the provider's condition icons.
const iconBase = "https://openweathermap.org/img/wn"

// IconURL resolves the condition icon to a fetchable URL. Empty when no icon
// code was supplied.
func (d *Data) IconURL() string {
	if d == nil || d.Icon == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s@2x.png", iconBase, d.Icon)
}

// Label renders the temperature line drawn next to the icon.
func (d *Data) Label() string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%d°C / %d°F", d.TempC, d.TempF)
}
