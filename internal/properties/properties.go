package properties

// Directories and files created under the input directory.
const (
	ClearDir          = "clear"
	CloudyDir         = "cloudy"
	RawDir            = "raw"
	VisualizationsDir = "visualizations"

	AnimationName = "final.gif"
	VideoName     = "final.avi"
	FootprintName = "window.geojson"
	ReportName    = "report.csv"
)

// AnimationFPS holds every frame of the time-lapse for five seconds.
const AnimationFPS = 0.2

type Color struct {
	R, G, B uint8
}

// ColorMap is the reversed cool-warm scale: stops from the lowest index value
// (red) through neutral grey to the highest (blue).
var ColorMap = []Color{
	{180, 4, 38},
	{244, 154, 123},
	{221, 221, 221},
	{141, 176, 254},
	{59, 76, 192},
}

// NoDataColor paints NaN and infinite pixels.
var NoDataColor = Color{255, 255, 255}
