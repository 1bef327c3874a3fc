package labs

import "github.com/mesikahq/spitalverse/internal/record"

type interpretation struct {
	low  string
	high string
}

var interpretations = map[string]interpretation{
	"Hemoglobin": {
		low:  "Low hemoglobin may indicate anemia. Consider iron-rich foods like spinach and red meat.",
		high: "Elevated hemoglobin. Stay hydrated and consult your physician.",
	},
	"Fasting Blood Glucose": {
		low:  "Blood sugar is low. Ensure regular meals and monitor for hypoglycemia symptoms.",
		high: "Elevated blood sugar (prediabetic range). Consider dietary changes and consult your doctor.",
	},
	"HbA1c": {
		low:  "Low HbA1c is generally not a concern.",
		high: "Elevated HbA1c indicates poor blood sugar control. Discuss diabetes management with your doctor.",
	},
	"Total Cholesterol": {
		low:  "Low cholesterol is generally not a concern.",
		high: "Elevated cholesterol. Consider a heart-healthy diet low in saturated fats.",
	},
	"LDL Cholesterol": {
		low:  "Low LDL cholesterol is desirable.",
		high: `High LDL ("bad" cholesterol). Increase fiber intake and consider statin therapy consultation.`,
	},
	"HDL Cholesterol": {
		low:  `Low HDL ("good" cholesterol). Increase physical activity and omega-3 fatty acids.`,
		high: "High HDL is generally protective for heart health.",
	},
	"Triglycerides": {
		low:  "Low triglycerides are not usually a concern.",
		high: "Elevated triglycerides. Reduce sugar and refined carbohydrate intake.",
	},
	"Vitamin D (25-OH)": {
		low:  "Vitamin D deficiency. Consider supplementation (60,000 IU weekly) or increased sun exposure.",
		high: "High Vitamin D levels. Review any supplements with your doctor.",
	},
	"Vitamin B12": {
		low:  "Vitamin B12 deficiency. Consider B12 supplements or fortified foods.",
		high: "High B12 is usually not harmful. Discuss with your doctor if concerned.",
	},
	"TSH": {
		low:  "Low TSH may indicate hyperthyroidism. Consult an endocrinologist for evaluation.",
		high: "Elevated TSH may indicate hypothyroidism. Thyroid hormone replacement may be needed.",
	},
	"Creatinine": {
		low:  "Low creatinine is usually not a concern.",
		high: "Elevated creatinine may indicate kidney function issues. Stay hydrated and consult your doctor.",
	},
	"ALT (GPT)": {
		low:  "Low ALT is not usually a concern.",
		high: "Elevated ALT may indicate liver stress. Limit alcohol and consult your doctor.",
	},
	"AST (GOT)": {
		low:  "Low AST is not usually a concern.",
		high: "Elevated AST may indicate liver or muscle damage. Medical evaluation recommended.",
	},
	"CRP": {
		low:  "Low CRP indicates minimal inflammation.",
		high: "Elevated CRP indicates inflammation in the body. Further investigation may be needed.",
	},
	"Iron (Serum)": {
		low:  "Low iron may indicate iron deficiency. Consider iron-rich foods or supplements.",
		high: "High iron levels. May need further testing for hemochromatosis.",
	},
	"Ferritin": {
		low:  "Low ferritin indicates depleted iron stores. Iron supplementation may be needed.",
		high: "Elevated ferritin may indicate iron overload or inflammation.",
	},
}

// Interpret returns the short explanation shown next to an out-of-range
// value. Normal values and unknown tests have none.
func Interpret(name string, trend record.Trend) (string, bool) {
	in, ok := interpretations[name]
	if !ok {
		return "", false
	}
	switch trend {
	case record.TrendDown:
		return in.low, true
	case record.TrendUp:
		return in.high, true
	}
	return "", false
}
