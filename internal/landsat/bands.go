package landsat

import "strings"

// Band is a logical spectral band, independent of the sensor that captured it.
type Band string

const (
	Coastal Band = "coastal"
	Blue    Band = "blue"
	Green   Band = "green"
	Red     Band = "red"
	NIR     Band = "nir"
	SWIR1   Band = "swir1"
	SWIR2   Band = "swir2"
)

// ReferenceBands are the bands the quality classifier inspects, in order of
// preference. Landsat 7 has no coastal band; its first band maps onto Blue.
var ReferenceBands = []Band{Coastal, Blue}

// bandIDs uses the Landsat 8/9 numbering for all calculations.
var bandIDs = map[Band]string{
	Coastal: "B1",
	Blue:    "B2",
	Green:   "B3",
	Red:     "B4",
	NIR:     "B5",
	SWIR1:   "B6",
	SWIR2:   "B7",
}

// ID returns the Landsat 8/9 band id (e.g. "B3") for the logical band.
func (b Band) ID() string {
	return bandIDs[b]
}

// Sensor identifies a band numbering scheme.
type Sensor string

const (
	Landsat89 Sensor = "landsat_8_9"
	Landsat7  Sensor = "landsat_7"
)

// sensorBands maps a sensor's own band id to the Landsat 8/9 band id.
var sensorBands = map[Sensor]map[string]string{
	Landsat89: {
		"B1":  "B1",
		"B2":  "B2",
		"B3":  "B3",
		"B4":  "B4",
		"B5":  "B5",
		"B6":  "B6",
		"B7":  "B7",
		"B8":  "B8",
		"B9":  "B9",
		"B10": "B10",
		"B11": "B11",
	},
	Landsat7: {
		"B1": "B2",
		"B2": "B3",
		"B3": "B4",
		"B4": "B5",
		"B5": "B6",
		"B7": "B7",
		"B8": "B8",
		"B6": "B10",
		// ETM+ ships the thermal band at low and high gain.
		"B6_VCID_1": "B10",
		"B6_VCID_2": "B11",
	},
}

// SensorFromSceneName picks the band numbering from a raw scene folder prefix.
// Only Landsat 7 differs; every other platform is read with Landsat 8/9 ids.
func SensorFromSceneName(name string) Sensor {
	if strings.HasPrefix(strings.ToUpper(name), "LE07") {
		return Landsat7
	}
	return Landsat89
}

// NormalizeBandID translates a sensor band id to its Landsat 8/9 equivalent.
// Ids outside the mapping (quality bands, panchromatic variants) pass through.
func (s Sensor) NormalizeBandID(id string) string {
	if mapped, ok := sensorBands[s][strings.ToUpper(id)]; ok {
		return mapped
	}
	return id
}
