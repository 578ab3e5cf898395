package tariff

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tariffkit/tariffkit/pkg/types"
)

// localFieldMap translates the camelCase field names used by database
// exports of the rate database into the lowercase API schema the engine
// consumes.
var localFieldMap = map[string]string{
	"utilityName":     "utility",
	"rateName":        "name",
	"eiaId":           "eiaid",
	"serviceType":     "servicetype",
	"effectiveDate":   "startdate",
	"endDate":         "enddate",
	"demandMin":       "mindemand",
	"demandMax":       "maxdemand",
	"energyMin":       "minenergy",
	"energyMax":       "maxenergy",
	"voltageCategory": "voltagecategory",
	"phaseWiring":     "phasewiring",

	"energyRateStrux":    "energyratestructure",
	"energyWeekdaySched": "energyweekdayschedule",
	"energyWeekendSched": "energyweekendschedule",
	"energyTOULabels":    "energytoulabels",
	"energyComments":     "energycomments",

	"demandRateStrux":           "demandratestructure",
	"demandWeekdaySched":        "demandweekdayschedule",
	"demandWeekendSched":        "demandweekendschedule",
	"demandLabels":              "demandtoulabels",
	"demandUnits":               "demandunits",
	"demandRateUnit":            "demandrateunit",
	"demandReactivePowerCharge": "demandreactivepowercharge",

	"flatDemandStrux":  "flatdemandstructure",
	"flatDemandMonths": "flatdemandmonths",
	"flatDemandUnit":   "flatdemandunit",

	"fixedChargeFirstMeter": "fixedchargefirstmeter",
	"fixedChargeUnits":      "fixedchargeunits",
	"minMonthlyCharge":      "minmonthlycharge",
}

// nestedTierKeys maps each rate-structure field to the wrapper key used by
// the nested export format, e.g.
// [{"energyRateTiers": [{...}]}] instead of [[{...}]].
var nestedTierKeys = map[string]string{
	"energyratestructure": "energyRateTiers",
	"demandratestructure": "demandRateTiers",
	"flatdemandstructure": "flatDemandTiers",
}

// TranslateLocal converts a tariff JSON document from the local database
// export format (camelCase names, nested tier wrappers, MongoDB _id/$date
// values) into the API schema, then parses and validates it.
func TranslateLocal(data []byte) (*types.Tariff, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, malformedf("invalid JSON: %v", err)
	}
	if items, ok := raw["items"].([]any); ok {
		if len(items) == 0 {
			return nil, invalidf("items must be a non-empty array")
		}
		inner, ok := items[0].(map[string]any)
		if !ok {
			return nil, invalidf("items entries must be objects")
		}
		raw = inner
	}

	converted := convertLocalFields(raw)
	normalizeRateStructures(converted)

	buf, err := json.Marshal(converted)
	if err != nil {
		return nil, malformedf("re-encoding translated tariff: %v", err)
	}
	return Parse(buf)
}

func convertLocalFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		if key == "_id" {
			out["label"] = mongoID(value)
			continue
		}
		newKey, ok := localFieldMap[key]
		if !ok {
			// keep lowercase keys as-is, lowercase anything else
			newKey = key
			if key != "" && key[0] >= 'A' && key[0] <= 'Z' {
				newKey = strings.ToLower(key)
			}
		}
		if key == "effectiveDate" || key == "endDate" {
			if ts, ok := mongoDate(value); ok {
				out[newKey] = ts
				continue
			}
		}
		out[newKey] = value
	}
	return out
}

// normalizeRateStructures flattens nested tier wrappers in place.
func normalizeRateStructures(t map[string]any) {
	for field, tierKey := range nestedTierKeys {
		list, ok := t[field].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		first, ok := list[0].(map[string]any)
		if !ok {
			continue
		}
		if _, nested := first[tierKey]; !nested {
			continue
		}
		flat := make([]any, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				flat = append(flat, item)
				continue
			}
			if tiers, ok := m[tierKey]; ok {
				flat = append(flat, tiers)
			} else {
				flat = append(flat, []any{m})
			}
		}
		t[field] = flat
	}
}

func mongoID(v any) string {
	if m, ok := v.(map[string]any); ok {
		if oid, ok := m["$oid"].(string); ok {
			return oid
		}
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// mongoDate converts a {"$date": "..."} value to a Unix timestamp.
func mongoDate(v any) (int64, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return 0, false
	}
	s, ok := m["$date"].(string)
	if !ok || s == "" {
		return 0, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}
