// Package pipeline runs a full pass over an input directory: extract archives,
// window raw scenes, then classify, compute and relocate every windowed scene
// before assembling the time-lapse.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/forest-guardian/lindex/internal/config"
	"github.com/forest-guardian/lindex/internal/landsat"
	"github.com/forest-guardian/lindex/internal/log"
	"github.com/forest-guardian/lindex/internal/properties"
	"github.com/forest-guardian/lindex/internal/quality"
	"github.com/forest-guardian/lindex/internal/raster"
	"github.com/forest-guardian/lindex/internal/scene"
	"github.com/forest-guardian/lindex/internal/spectral"
	"github.com/forest-guardian/lindex/internal/utils"
	"github.com/forest-guardian/lindex/output"
)

var ErrRelocationConflict = errors.New("relocation destination already exists")

// Visualizer renders grids and assembles the rendered images.
type Visualizer interface {
	Render(grid *raster.Grid) image.Image
	SaveImage(img image.Image, path string) error
	SaveAnimation(imagePaths []string, fps float64, outputPath string) error
	SaveVideo(imagePaths []string, secondsPerFrame int, outputPath string) error
}

// Summary describes what a run produced.
type Summary struct {
	RunID       string
	Extracted   int
	Windowed    int
	Written     int
	Cloudy      int
	BandMissing int
	Unmoved     int
	OutputDir   string
	Animation   string
	Video       string
	Report      string
	Scenes      []output.SceneReport
}

type Pipeline struct {
	cfg        config.RunConfig
	archives   scene.ArchiveSource
	store      raster.Store
	visualizer Visualizer
	classifier *quality.Classifier

	runID       string
	state       State
	transitions []State
}

func New(cfg config.RunConfig, archives scene.ArchiveSource, store raster.Store, visualizer Visualizer) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		archives:   archives,
		store:      store,
		visualizer: visualizer,
		classifier: quality.NewClassifier(store),
		runID:      uuid.NewString(),
	}
}

func (p *Pipeline) RunID() string {
	return p.runID
}

// Transitions returns every state the run has entered, in order.
func (p *Pipeline) Transitions() []State {
	return append([]State(nil), p.transitions...)
}

func (p *Pipeline) enter(s State, keysAndValues ...interface{}) {
	log.Debugw("State transition", append([]interface{}{"run_id", p.runID, "from", p.state, "to", s}, keysAndValues...)...)
	p.state = s
	p.transitions = append(p.transitions, s)
}

func (p *Pipeline) indexDir() string {
	return filepath.Join(p.cfg.InputDir, string(p.cfg.Index.Name))
}

func (p *Pipeline) progress(max int, description string) *progressbar.ProgressBar {
	if p.cfg.Quiet {
		return progressbar.DefaultSilent(int64(max), description)
	}
	return progressbar.Default(int64(max), description)
}

// Run processes the input directory once. Errors returned are fatal for the
// run; per-scene problems are logged and recorded in the summary instead.
func (p *Pipeline) Run() (*Summary, error) {
	in := p.cfg.InputDir
	summary := &Summary{
		RunID:     p.runID,
		OutputDir: p.indexDir(),
	}
	log.Infow("Starting run", "run_id", p.runID, "input", in, "index", p.cfg.Index.Name, "window", p.cfg.Window.String(), "how_strict", p.cfg.HowStrict)

	for _, dir := range []string{
		filepath.Join(in, properties.CloudyDir),
		filepath.Join(in, properties.ClearDir),
		filepath.Join(p.indexDir(), properties.RawDir),
		filepath.Join(p.indexDir(), properties.VisualizationsDir),
	} {
		if err := utils.EnsureDir(dir); err != nil {
			return nil, err
		}
	}

	p.enter(Extracting)
	extracted, err := scene.ExtractArchives(p.archives, in)
	if err != nil {
		return nil, err
	}
	summary.Extracted = extracted

	p.enter(Windowing)
	windowed, err := p.windowAll()
	if err != nil {
		return nil, err
	}
	summary.Windowed = windowed
	if err := output.WriteFootprint(p.cfg.Window, filepath.Join(p.indexDir(), properties.FootprintName)); err != nil {
		log.Warnw("Failed to write window footprint", "run_id", p.runID, "error", err)
	}

	keys, err := scene.Keys(in)
	if err != nil {
		return nil, err
	}

	var frames []string
	bar := p.progress(len(keys), "Processing scenes")
	for _, key := range keys {
		row, err := p.processScene(key)
		if err != nil {
			return nil, err
		}
		summary.Scenes = append(summary.Scenes, row)
		switch row.Outcome {
		case OutcomeWritten:
			summary.Written++
			frames = append(frames, row.Visualization)
		case OutcomeCloudy:
			summary.Cloudy++
		case OutcomeBandMissing:
			summary.BandMissing++
		}
		if !row.Relocated {
			summary.Unmoved++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	p.enter(Animating, "frames", len(frames))
	if err := p.animate(frames, summary); err != nil {
		return nil, err
	}

	summary.Report = filepath.Join(p.indexDir(), properties.ReportName)
	if err := output.WriteReport(summary.Scenes, summary.Report); err != nil {
		log.Warnw("Failed to write run report", "run_id", p.runID, "error", err)
		summary.Report = ""
	}

	p.enter(Done)
	log.Infow("Run finished", "run_id", p.runID, "written", summary.Written, "cloudy", summary.Cloudy, "band_missing", summary.BandMissing, "unmoved", summary.Unmoved)
	return summary, nil
}

// windowAll crops every raw scene. A raw scene that cannot be windowed is
// logged and dropped; the rest of the run goes on.
func (p *Pipeline) windowAll() (int, error) {
	raws, err := scene.RawScenes(p.cfg.InputDir)
	if err != nil {
		return 0, err
	}

	windowed := 0
	bar := p.progress(len(raws), "Windowing scenes")
	for _, raw := range raws {
		key, err := scene.WindowScene(p.store, raw, p.cfg.InputDir, p.cfg.Window)
		switch {
		case errors.Is(err, landsat.ErrInvalidSceneName):
			log.Warnw("Skipping raw scene with unexpected name", "run_id", p.runID, "scene", raw, "error", err)
		case err != nil:
			log.Errorw("Failed to window scene", "run_id", p.runID, "scene", raw, "error", err)
			if key != "" {
				_ = os.RemoveAll(filepath.Join(p.cfg.InputDir, key))
			}
		default:
			windowed++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	log.Infof("Windowed %d of %d raw scenes", windowed, len(raws))
	return windowed, nil
}

func (p *Pipeline) processScene(key string) (output.SceneReport, error) {
	sceneDir := filepath.Join(p.cfg.InputDir, key)
	row := output.SceneReport{Scene: key}

	p.enter(Classifying, "scene", key)
	referencePath := ""
	if p.cfg.ClassificationEnabled() {
		path, band, err := landsat.ResolveReference(sceneDir)
		if err != nil {
			if errors.Is(err, landsat.ErrBandNotFound) {
				log.Warnw("Reference band missing, leaving scene in place", "run_id", p.runID, "scene", key, "error", err)
				row.Outcome = OutcomeBandMissing
				return row, nil
			}
			return row, err
		}
		referencePath = path
		log.Debugw("Resolved reference band", "run_id", p.runID, "scene", key, "band", band, "path", path)
	}

	assessment, err := p.classifier.Classify(referencePath, p.cfg.HowStrict)
	if err != nil {
		return row, fmt.Errorf("%w: scene %s: %v", landsat.ErrArchiveExtraction, key, err)
	}
	row.Verdict = string(assessment.Verdict)
	row.Mode = assessment.Mode
	row.Mean = assessment.Mean

	if assessment.Verdict == quality.Cloudy {
		p.enter(Skipping, "scene", key, "reason", assessment.Reason)
		row.Outcome = OutcomeCloudy
		row.Relocated = p.relocate(key, properties.CloudyDir)
		return row, nil
	}

	p.enter(Computing, "scene", key)
	result, err := spectral.Compute(p.cfg.Index, sceneDir, p.store)
	if err != nil {
		if errors.Is(err, landsat.ErrBandNotFound) {
			log.Warnw("Band missing, leaving scene in place", "run_id", p.runID, "scene", key, "index", p.cfg.Index.Name, "error", err)
			row.Outcome = OutcomeBandMissing
			return row, nil
		}
		return row, fmt.Errorf("failed to compute %s for scene %s: %w", p.cfg.Index.Name, key, err)
	}
	row.NonFinite = result.NonFinite
	if result.NonFinite > 0 {
		log.Infow("Index has non-finite pixels", "run_id", p.runID, "scene", key, "count", result.NonFinite, "pixels", len(result.Grid.Data))
	}

	p.enter(Writing, "scene", key)
	if err := p.write(key, sceneDir, result, &row); err != nil {
		return row, err
	}
	row.Outcome = OutcomeWritten
	row.Relocated = p.relocate(key, properties.ClearDir)
	return row, nil
}

// geoSource picks the band whose georeference the derived raster inherits:
// the reference band when present, else the first band the index read.
func (p *Pipeline) geoSource(sceneDir string, result *spectral.Result) string {
	if path, _, err := landsat.ResolveReference(sceneDir); err == nil {
		return path
	}
	return result.BandPaths[p.cfg.Index.Bands[0]]
}

func (p *Pipeline) write(key, sceneDir string, result *spectral.Result, row *output.SceneReport) error {
	name := fmt.Sprintf("%s_%s", key, p.cfg.Index.Name)

	ref, err := p.store.GeoReference(p.geoSource(sceneDir, result))
	if err != nil {
		return fmt.Errorf("scene %s: %w", key, err)
	}
	rasterPath := filepath.Join(p.indexDir(), properties.RawDir, name+".TIF")
	if err := output.WriteRaster(p.store, result.Grid, ref, rasterPath); err != nil {
		return fmt.Errorf("scene %s: %w", key, err)
	}
	row.Raster = rasterPath

	img := p.visualizer.Render(result.Grid)
	visPath := filepath.Join(p.indexDir(), properties.VisualizationsDir, name+".png")
	if err := p.visualizer.SaveImage(img, visPath); err != nil {
		return fmt.Errorf("scene %s: %w", key, err)
	}
	row.Visualization = visPath

	if err := p.visualizer.SaveImage(img, filepath.Join(sceneDir, name+".png")); err != nil {
		log.Warnw("Failed to save scene copy of visualization", "run_id", p.runID, "scene", key, "error", err)
	}

	georeferenced := filepath.Join(p.indexDir(), properties.VisualizationsDir, name+"_reprojected.TIF")
	if err := p.store.AssignBounds(visPath, georeferenced, p.cfg.Window); err != nil {
		log.Warnw("Failed to georeference visualization", "run_id", p.runID, "scene", key, "error", err)
	}

	resX, resY := ref.PixelSize()
	log.Infow("Scene written", "run_id", p.runID, "scene", key, "raster", rasterPath, "visualization", visPath, "resolution", []float64{resX, resY})
	return nil
}

// relocate moves a scene directory into dir. Failures leave the scene where
// it is and are only logged.
func (p *Pipeline) relocate(key, dir string) bool {
	src := filepath.Join(p.cfg.InputDir, key)
	dst := filepath.Join(p.cfg.InputDir, dir, key)

	if utils.Exists(dst) {
		log.Warnw("Scene not relocated", "run_id", p.runID, "scene", key, "error", fmt.Errorf("%w: %s", ErrRelocationConflict, dst))
		return false
	}
	if err := os.Rename(src, dst); err != nil {
		log.Errorw("Scene not relocated", "run_id", p.runID, "scene", key, "destination", dst, "error", err)
		return false
	}
	log.Debugw("Scene relocated", "run_id", p.runID, "scene", key, "destination", dst)
	return true
}

func (p *Pipeline) animate(frames []string, summary *Summary) error {
	if len(frames) == 0 {
		log.Warnw("No clear scenes, skipping animation", "run_id", p.runID)
		return nil
	}

	ordered := append([]string(nil), frames...)
	utils.SortByDate(ordered, frameDate, true)

	visDir := filepath.Join(p.indexDir(), properties.VisualizationsDir)
	summary.Animation = filepath.Join(visDir, properties.AnimationName)
	if err := p.visualizer.SaveAnimation(ordered, properties.AnimationFPS, summary.Animation); err != nil {
		return fmt.Errorf("failed to write animation: %w", err)
	}

	if p.cfg.Video {
		summary.Video = filepath.Join(visDir, properties.VideoName)
		seconds := int(math.Round(1 / properties.AnimationFPS))
		if err := p.visualizer.SaveVideo(ordered, seconds, summary.Video); err != nil {
			log.Errorw("Failed to write video", "run_id", p.runID, "error", err)
			summary.Video = ""
		}
	}
	return nil
}

// frameDate reads the scene date back from a visualization named <key>_<index>.png.
func frameDate(path string) time.Time {
	base := filepath.Base(path)
	if len(base) < 8 {
		return time.Time{}
	}
	date, err := landsat.SceneDate(base[:8])
	if err != nil {
		return time.Time{}
	}
	return date
}
