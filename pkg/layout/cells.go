package layout

import "github.com/go-veld/veld/pkg/runtime"

// Cell accessors tolerant of instances that never declared the property.

func cellFloat(inst *runtime.Instance, name string, def float64) float64 {
	if cell := inst.OwnCell(name); cell != nil {
		return cell.GetFloat()
	}
	return def
}

func cellString(inst *runtime.Instance, name, def string) string {
	if cell := inst.OwnCell(name); cell != nil {
		if v := cell.GetString(); v != "" {
			return v
		}
	}
	return def
}

func cellBool(inst *runtime.Instance, name string, def bool) bool {
	cell := inst.OwnCell(name)
	if cell == nil {
		return def
	}
	return cell.GetBool()
}
