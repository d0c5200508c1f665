package plan

// Focus is a user-selected dietary or health objective that steers prompt
// construction.
type Focus string

const (
	FocusTasty          Focus = "tasty"
	FocusBrainPower     Focus = "brain_power"
	FocusSkinBeauty     Focus = "skin_beauty"
	FocusDigestive      Focus = "digestive"
	FocusStressRelief   Focus = "stress_relief"
	FocusPostWorkout    Focus = "post_workout"
	FocusWeightLoss     Focus = "weight_loss"
	FocusLateNight      Focus = "late_night"
	FocusTCMAuthentic   Focus = "tcm_authentic"
	FocusSeasonalHealth Focus = "seasonal_health"
	FocusEnergyBoost    Focus = "energy_boost"
	FocusFamilyFriendly Focus = "family_friendly"
	FocusGutHealth      Focus = "gut_health"
	FocusSleepWell      Focus = "sleep_well"
	FocusEyeCare        Focus = "eye_care"
	FocusAuto           Focus = "auto"
)

var focusLabels = map[Focus]string{
	FocusTasty:          "爆款风味",
	FocusBrainPower:     "补脑续命",
	FocusSkinBeauty:     "养颜滋阴",
	FocusDigestive:      "健脾祛湿",
	FocusStressRelief:   "疏肝理气",
	FocusPostWorkout:    "高蛋白恢复",
	FocusWeightLoss:     "低卡掉秤",
	FocusLateNight:      "熬夜修复",
	FocusTCMAuthentic:   "正统食养",
	FocusSeasonalHealth: "顺时依季",
	FocusEnergyBoost:    "大补元气",
	FocusFamilyFriendly: "全家共享",
	FocusGutHealth:      "润肠通便",
	FocusSleepWell:      "宁心安神",
	FocusEyeCare:        "明目护眼",
	FocusAuto:           "智能自动",
}

// AllFocuses lists every selectable focus in display order.
var AllFocuses = []Focus{
	FocusTasty, FocusTCMAuthentic, FocusWeightLoss, FocusSkinBeauty,
	FocusBrainPower, FocusDigestive, FocusStressRelief, FocusSeasonalHealth,
	FocusPostWorkout, FocusLateNight, FocusEnergyBoost, FocusFamilyFriendly,
	FocusGutHealth, FocusSleepWell, FocusEyeCare, FocusAuto,
}

// Label returns the localized label used in prompts and UI; unknown values
// fall back to the raw tag so a new tag never breaks prompt building.
func (f Focus) Label() string {
	if l, ok := focusLabels[f]; ok {
		return l
	}
	return string(f)
}

// ParseFocus validates a raw tag string.
func ParseFocus(s string) (Focus, bool) {
	f := Focus(s)
	_, ok := focusLabels[f]
	return f, ok
}
