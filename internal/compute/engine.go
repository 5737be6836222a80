package compute

import "context"

// ReportEngine adapts the pure formula set to the handler's delegation
// contract.
type ReportEngine struct{}

// Compute builds a full health report from schema-validated tool
// arguments. It never fails: malformed input is rejected upstream by
// schema validation, and missing optional inputs yield nil fields.
func (ReportEngine) Compute(_ context.Context, args map[string]any) (any, error) {
	return BuildReport(ProfileFromArguments(args)), nil
}

// ProfileFromArguments maps validated tool arguments onto a Profile.
// Absent keys leave the corresponding field at its zero "not provided"
// value.
func ProfileFromArguments(args map[string]any) Profile {
	return Profile{
		HeightCm:      num(args, "height_cm"),
		WeightKg:      num(args, "weight_kg"),
		Age:           int(num(args, "age")),
		Sex:           str(args, "sex"),
		WaistCm:       num(args, "waist_cm"),
		HipCm:         num(args, "hip_cm"),
		NeckCm:        num(args, "neck_cm"),
		ActivityLevel: str(args, "activity_level"),
	}
}

func num(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func str(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
