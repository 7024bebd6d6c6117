package domain

import (
	"fmt"
	"sort"
)

// Station is a BoM observation site the service can forecast for.
type Station struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// stationCodes maps a location label (as used by the training data) to the
// BoM Daily Weather Observations product code for that site.
var stationCodes = map[string]string{
	"Albury":           "IDCJDW2002",
	"BadgerysCreek":    "IDCJDW2126",
	"Cobar":            "IDCJDW2050",
	"CoffsHarbour":     "IDCJDW2080",
	"Moree":            "IDCJDW2084",
	"Newcastle":        "IDCJDW2097",
	"NorahHead":        "IDCJDW2096",
	"NorfolkIsland":    "IDCJDW8002",
	"Penrith":          "IDCJDW2127",
	"Richmond":         "IDCJDW2128",
	"Sydney":           "IDCJDW2129",
	"SydneyAirport":    "IDCJDW2130",
	"WaggaWagga":       "IDCJDW2139",
	"Williamtown":      "IDCJDW2140",
	"Wollongong":       "IDCJDW2141",
	"Canberra":         "IDCJDW2801",
	"Tuggeranong":      "IDCJDW2802",
	"Ballarat":         "IDCJDW3033",
	"Bendigo":          "IDCJDW3008",
	"Sale":             "IDCJDW3035",
	"MelbourneAirport": "IDCJDW3036",
	"Melbourne":        "IDCJDW3037",
	"Mildura":          "IDCJDW3038",
	"Nhil":             "IDCJDW3039",
	"Portland":         "IDCJDW3040",
	"Watsonia":         "IDCJDW3041",
	"Dartmoor":         "IDCJDW3042",
	"Brisbane":         "IDCJDW4019",
	"Cairns":           "IDCJDW4020",
	"GoldCoast":        "IDCJDW4021",
	"Townsville":       "IDCJDW4022",
	"Adelaide":         "IDCJDW5081",
	"MountGambier":     "IDCJDW5003",
	"Nuriootpa":        "IDCJDW5004",
	"Woomera":          "IDCJDW5005",
	"Albany":           "IDCJDW6111",
	"Witchcliffe":      "IDCJDW6112",
	"PearceRAAF":       "IDCJDW6113",
	"PerthAirport":     "IDCJDW6114",
	"Perth":            "IDCJDW6115",
	"SalmonGums":       "IDCJDW6116",
	"Walpole":          "IDCJDW6117",
	"Hobart":           "IDCJDW7021",
	"Launceston":       "IDCJDW7025",
	"AliceSprings":     "IDCJDW8019",
	"Darwin":           "IDCJDW8014",
	"Katherine":        "IDCJDW8021",
	"Uluru":            "IDCJDW8022",
}

// stations is the registry sorted by name, built once at package init.
var stations = buildStations()

func buildStations() []Station {
	out := make([]Station, 0, len(stationCodes))
	for name, code := range stationCodes {
		out = append(out, Station{Name: name, Code: code})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupStation returns the station registered under name.
func LookupStation(name string) (Station, error) {
	code, ok := stationCodes[name]
	if !ok {
		return Station{}, fmt.Errorf("%w: %q", ErrUnknownStation, name)
	}
	return Station{Name: name, Code: code}, nil
}

// Stations returns a copy of the registry ordered by name.
func Stations() []Station {
	out := make([]Station, len(stations))
	copy(out, stations)
	return out
}
