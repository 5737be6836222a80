// Package compute implements the health-metric formulas. Every function is
// pure: same input, same output, no side effects. Fields whose required
// inputs are absent come back nil rather than erroring, so callers can
// render partial reports.
package compute

import "math"

// Sex categories accepted by the formulas.
const (
	SexMale   = "male"
	SexFemale = "female"
)

// Activity tier multipliers for daily calorie needs (Mifflin-St Jeor BMR
// scaled by activity level).
var activityFactors = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// Profile is the validated input to a report computation. Zero values mean
// "not provided" for the optional fields.
type Profile struct {
	HeightCm      float64
	WeightKg      float64
	Age           int
	Sex           string
	WaistCm       float64
	HipCm         float64
	NeckCm        float64
	ActivityLevel string
}

// WeightBounds is the healthy-weight range for a given height.
type WeightBounds struct {
	MinKg float64 `json:"min_kg"`
	MaxKg float64 `json:"max_kg"`
}

// Report is the full computation output. Optional metrics are nil when
// their inputs were not supplied.
type Report struct {
	BMI            float64       `json:"bmi"`
	BMICategory    string        `json:"bmi_category"`
	IdealWeight    *WeightBounds `json:"ideal_weight,omitempty"`
	BodyFatPercent *float64      `json:"body_fat_percent,omitempty"`
	DailyCalories  *float64      `json:"daily_calories,omitempty"`
}

// BMI returns the body mass index for the given height and weight,
// rounded to one decimal.
func BMI(heightCm, weightKg float64) float64 {
	m := heightCm / 100
	return round1(weightKg / (m * m))
}

// BMICategory maps a BMI value to its WHO category.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal weight"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// IdealWeight returns the weight range corresponding to the healthy BMI
// band (18.5 to 24.9) at the given height.
func IdealWeight(heightCm float64) WeightBounds {
	m := heightCm / 100
	return WeightBounds{
		MinKg: round1(18.5 * m * m),
		MaxKg: round1(24.9 * m * m),
	}
}

// BodyFatPercent estimates body fat using the US Navy circumference
// method. Returns nil when the required circumferences for the given sex
// are missing or the log arguments would be non-positive.
func BodyFatPercent(sex string, heightCm, waistCm, neckCm, hipCm float64) *float64 {
	var pct float64
	switch sex {
	case SexMale:
		if waistCm <= 0 || neckCm <= 0 || waistCm-neckCm <= 0 {
			return nil
		}
		pct = 495/(1.0324-0.19077*math.Log10(waistCm-neckCm)+0.15456*math.Log10(heightCm)) - 450
	case SexFemale:
		if waistCm <= 0 || neckCm <= 0 || hipCm <= 0 || waistCm+hipCm-neckCm <= 0 {
			return nil
		}
		pct = 495/(1.29579-0.35004*math.Log10(waistCm+hipCm-neckCm)+0.22100*math.Log10(heightCm)) - 450
	default:
		return nil
	}
	if pct < 0 || math.IsNaN(pct) || math.IsInf(pct, 0) {
		return nil
	}
	v := round1(pct)
	return &v
}

// DailyCalories estimates total daily energy expenditure: Mifflin-St Jeor
// basal rate times the activity factor. Returns nil when age, sex, or the
// activity tier is missing or unrecognized.
func DailyCalories(sex string, heightCm, weightKg float64, age int, activity string) *float64 {
	if age <= 0 {
		return nil
	}
	factor, ok := activityFactors[activity]
	if !ok {
		return nil
	}
	var bmr float64
	switch sex {
	case SexMale:
		bmr = 10*weightKg + 6.25*heightCm - 5*float64(age) + 5
	case SexFemale:
		bmr = 10*weightKg + 6.25*heightCm - 5*float64(age) - 161
	default:
		return nil
	}
	v := math.Round(bmr * factor)
	return &v
}

// BuildReport computes every metric the profile's inputs allow.
func BuildReport(p Profile) Report {
	bmi := BMI(p.HeightCm, p.WeightKg)
	ideal := IdealWeight(p.HeightCm)
	return Report{
		BMI:            bmi,
		BMICategory:    BMICategory(bmi),
		IdealWeight:    &ideal,
		BodyFatPercent: BodyFatPercent(p.Sex, p.HeightCm, p.WaistCm, p.NeckCm, p.HipCm),
		DailyCalories:  DailyCalories(p.Sex, p.HeightCm, p.WeightKg, p.Age, p.ActivityLevel),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
