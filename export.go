package poliastro

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// CgCatalog definition.
type CgCatalog struct {
	Version string     `json:"version"`
	Name    string     `json:"name"`
	Items   []*CgItems `json:"items"`
	Require []string   `json:"require,omitempty"`
}

func (c *CgCatalog) String() string {
	return c.Name + "(" + c.Version + ")"
}

// CgItems definition.
type CgItems struct {
	Class           string            `json:"class"`
	Name            string            `json:"name"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	Center          string            `json:"center"`
	TrajectoryFrame string            `json:"trajectoryFrame"`
	Trajectory      *CgTrajectory     `json:"trajectory,omitempty"`
	Bodyframe       *CgBodyFrame      `json:"bodyFrame,omitempty"`
	Geometry        *CgGeometry       `json:"geometry,omitempty"`
	Label           *CgLabel          `json:"label,omitempty"`
	TrajectoryPlot  *CgTrajectoryPlot `json:"trajectoryPlot,omitempty"`
}

// CgTrajectory definition.
type CgTrajectory struct {
	Type   string `json:"type,omitempty"`
	Source string `json:"source,omitempty"`
}

// Validate validates a CgTrajectory.
func (t *CgTrajectory) Validate() error {
	if t.Type != "InterpolatedStates" || !strings.HasSuffix(t.Source, "xyzv") {
		return errors.New("only InterpolatedStates are currently supported in Cosmographia trajectory types")
	}
	return nil
}

func (t *CgTrajectory) String() string {
	return t.Source + " as " + t.Type
}

// CgBodyFrame definition.
type CgBodyFrame struct {
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
}

func (c *CgBodyFrame) String() string {
	return c.Name + " (type: " + c.Type + ")"
}

// CgGeometry definition.
type CgGeometry struct {
	Type   string    `json:"type,omitempty"`
	Mesh   []float64 `json:"meshRotation,omitempty"`
	Size   float64   `json:"size,omitempty"`
	Source string    `json:"source,omitempty"`
}

// CgLabel definition.
type CgLabel struct {
	Color    []float64 `json:"color,omitempty"`
	FadeSize int       `json:"fadeSize,omitempty"`
	ShowText bool      `json:"showText,omitempty"`
}

func (l *CgLabel) String() string {
	return fmt.Sprintf("color %v, fade %d, show %v", l.Color, l.FadeSize, l.ShowText)
}

// CgTrajectoryPlot definition.
type CgTrajectoryPlot struct {
	Color       []float64 `json:"color,omitempty"`
	LineWidth   int       `json:"lineWidth,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Lead        string    `json:"lead,omitempty"`
	Fade        int       `json:"fade,omitempty"`
	SampleCount int       `json:"sampleCount,omitempty"`
}

// CgInterpolatedState definition.
type CgInterpolatedState struct {
	JD       float64
	Position []float64
	Velocity []float64
}

// FromText initializes from text.
// The `record` parameter must be an array of seven items.
func (i *CgInterpolatedState) FromText(record []string) {
	if val, err := strconv.ParseFloat(record[0], 64); err != nil {
		panic(err)
	} else {
		i.JD = val
	}

	if posX, err := strconv.ParseFloat(record[1], 64); err != nil {
		panic(err)
	} else if posY, err := strconv.ParseFloat(record[2], 64); err != nil {
		panic(err)
	} else if posZ, err := strconv.ParseFloat(record[3], 64); err != nil {
		panic(err)
	} else {
		i.Position = []float64{posX, posY, posZ}
	}

	if velX, err := strconv.ParseFloat(record[4], 64); err != nil {
		panic(err)
	} else if velY, err := strconv.ParseFloat(record[5], 64); err != nil {
		panic(err)
	} else if velZ, err := strconv.ParseFloat(record[6], 64); err != nil {
		panic(err)
	} else {
		i.Velocity = []float64{velX, velY, velZ}
	}
}

// ToText converts to text for written output.
func (i *CgInterpolatedState) ToText() string {
	return fmt.Sprintf("%f %f %f %f %f %f %f", i.JD, i.Position[0], i.Position[1], i.Position[2], i.Velocity[0], i.Velocity[1], i.Velocity[2])
}

// ParseInterpolatedStates takes a string and converts that into a CgInterpolatedState.
func ParseInterpolatedStates(s string) []*CgInterpolatedState {
	var states = []*CgInterpolatedState{}
	r := csv.NewReader(strings.NewReader(s))
	r.Comma = ' '
	r.Comment = '#'
	for {
		record, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			panic(err)
		}
		state := CgInterpolatedState{}
		state.FromText(record)
		states = append(states, &state)
	}

	return states
}

// ExportConfig configures the exports of a propagated trajectory.
type ExportConfig struct {
	Filename  string
	Cosmo     bool // Generate the .xyzv interpolated states and the Cosmographia catalog
	AsCSV     bool // Generate the orbital element CSV
	Timestamp bool // Time-stamp the generated file names
}

// IsUseless returns whether this config would not export anything.
func (c ExportConfig) IsUseless() bool {
	return !c.Cosmo && !c.AsCSV
}

// createInterpolatedFile returns a file which requires a defer close statement!
func createInterpolatedFile(filename string, stamped bool, stateDT time.Time) *os.File {
	conf := pConfig()
	if stamped {
		t := time.Now()
		filename = fmt.Sprintf("%s/prop-%s-%d-%02d-%02dT%02d.%02d.%02d.xyzv", conf.outputDir, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/prop-%s.xyzv", conf.outputDir, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a TDB Julian date
#   Position in km
#   Velocity in km/sec
#   Simulation time start (UTC): %s
`, time.Now(), stateDT.UTC()))
	return f
}

// createElementsCSVFile returns a file which requires a defer close statement!
func createElementsCSVFile(filename string, stamped bool, stateDT time.Time) *os.File {
	conf := pConfig()
	if stamped {
		t := time.Now()
		filename = fmt.Sprintf("%s/orbital-elements-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", conf.outputDir, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/orbital-elements-%s.csv", conf.outputDir, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
#   Simulation time start (UTC): %s
time,a,e,i,Omega,omega,nu,timeInHours,timeInDays
`, time.Now(), stateDT.UTC()))
	return f
}

// ExportTrajectory writes the trajectory of the provided body-centric states
// to the configured output directory and returns the paths written. The
// epoch anchors the time offsets to Julian dates; times and states must be of
// the same length, as returned by Propagate.
func ExportTrajectory(name string, epoch time.Time, times []float64, states []State, body CelestialObject, conf ExportConfig) ([]string, error) {
	if conf.IsUseless() {
		return nil, nil
	}
	if len(times) != len(states) {
		return nil, fmt.Errorf("times and states length mismatch (%d vs %d)", len(times), len(states))
	}
	var written []string
	if conf.Cosmo {
		f := createInterpolatedFile(name, conf.Timestamp, epoch)
		for i, s := range states {
			dt := epoch.Add(time.Duration(times[i] * float64(time.Second)))
			pt := CgInterpolatedState{JD: julian.TimeToJD(dt), Position: s.R[:], Velocity: s.V[:]}
			if _, err := f.WriteString(pt.ToText() + "\n"); err != nil {
				f.Close()
				return written, err
			}
		}
		written = append(written, f.Name())
		f.Close()

		// The catalog lets Cosmographia pick the trajectory up directly.
		traj := CgTrajectory{Type: "InterpolatedStates", Source: fmt.Sprintf("prop-%s.xyzv", name)}
		label := CgLabel{Color: []float64{0.6, 1, 1}, FadeSize: 1000000, ShowText: true}
		plot := CgTrajectoryPlot{Color: []float64{0.6, 1, 1}, LineWidth: 1, Lead: "0 d", SampleCount: 10}
		item := CgItems{Class: "spacecraft", Name: name, StartTime: fmt.Sprintf("%s", epoch.UTC()), Center: body.Name, Trajectory: &traj, Label: &label, TrajectoryPlot: &plot}
		if body.Equals(Sun) {
			item.TrajectoryFrame = "EclipticJ2000"
		} else {
			item.TrajectoryFrame = "ICRF"
		}
		catalog := CgCatalog{Version: "1.0", Name: name, Items: []*CgItems{&item}}
		fc, err := os.Create(fmt.Sprintf("%s/catalog-%s.json", pConfig().outputDir, name))
		if err != nil {
			return written, err
		}
		marsh, err := json.Marshal(&catalog)
		if err != nil {
			fc.Close()
			return written, err
		}
		fc.Write(marsh)
		written = append(written, fc.Name())
		fc.Close()
	}
	if conf.AsCSV {
		f := createElementsCSVFile(name, conf.Timestamp, epoch)
		for i, s := range states {
			o := NewOrbitFromState(s, body)
			a, e, oi, Ω, ω, ν, _, _, _ := o.Elements()
			dt := epoch.Add(time.Duration(times[i] * float64(time.Second)))
			line := fmt.Sprintf("%s,%f,%f,%f,%f,%f,%f,%f,%f\n", dt.UTC(), a, e, Rad2deg(oi), Rad2deg(Ω), Rad2deg(ω), Rad2deg(ν), times[i]/3600, times[i]/86400)
			if _, err := f.WriteString(line); err != nil {
				f.Close()
				return written, err
			}
		}
		written = append(written, f.Name())
		f.Close()
	}
	return written, nil
}
