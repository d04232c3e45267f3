package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Ivan9528/poliastro"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

// This code effectively only reads the scenario file and propagates the orbit.

const (
	defaultScenario = "~~unset~~"
	dateFormat      = "2006-01-02 15:04:05"
)

var (
	scenario string
	verbose  bool
)

func init() {
	// Read flags
	flag.StringVar(&scenario, "scenario", defaultScenario, "propagation scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	// Load scenario
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	// Read mission epoch
	epoch := confReadJDEorTime("mission.epoch")
	if verbose {
		log.Printf("[conf] epoch: %s\n", epoch)
	}

	// Read orbit
	centralBodyName := viper.GetString("orbit.body")
	centralBody, err := poliastro.CelestialObjectFromString(centralBodyName)
	if err != nil {
		log.Fatalf("could not understand body `%s`: %s", centralBodyName, err)
	}
	var state poliastro.State
	if viper.IsSet("orbit.R") {
		R := viper.Get("orbit.R").([]interface{})
		V := viper.Get("orbit.V").([]interface{})
		state = poliastro.NewState(floatSlice(R), floatSlice(V), centralBody.GM())
	} else {
		a := viper.GetFloat64("orbit.sma")
		e := viper.GetFloat64("orbit.ecc")
		i := viper.GetFloat64("orbit.inc")
		Ω := viper.GetFloat64("orbit.RAAN")
		ω := viper.GetFloat64("orbit.argPeri")
		ν := viper.GetFloat64("orbit.tAnomaly")
		state = poliastro.NewOrbitFromOE(a, e, i, Ω, ω, ν, centralBody).State()
	}

	// Read perturbations
	var perts poliastro.Perturbations
	perts.Body = &centralBody
	perts.Epoch = epoch
	if viper.GetBool("perturbations.J3") {
		perts.Jn = 3
	} else if viper.GetBool("perturbations.J2") {
		perts.Jn = 2
	}
	for _, bodyName := range viper.GetStringSlice("perturbations.bodies") {
		body, err := poliastro.CelestialObjectFromString(bodyName)
		if err != nil {
			log.Fatalf("could not understand perturbing body `%s`: %s", bodyName, err)
		}
		perts.PerturbingBody = &body
		break // only a single third body is supported
	}
	if accel := viper.GetFloat64("perturbations.tangential"); accel != 0 {
		perts.Arbitrary = poliastro.Tangential(accel)
	}

	// Read propagation configuration
	cfg := poliastro.DefaultPropConfig()
	if viper.IsSet("propagation.method") {
		switch strings.ToLower(viper.GetString("propagation.method")) {
		case "cowell":
			cfg.Method = poliastro.Cowell
		case "kepler":
			cfg.Method = poliastro.Kepler
		default:
			log.Fatalf("unknown propagation method `%s`", viper.GetString("propagation.method"))
		}
	}
	if rtol := viper.GetFloat64("propagation.rtol"); rtol != 0 {
		cfg.RTol = rtol
	}
	if atol := viper.GetFloat64("propagation.atol"); atol != 0 {
		cfg.ATol = atol
	}
	if maxSteps := viper.GetInt("propagation.maxSteps"); maxSteps > 0 {
		cfg.MaxSteps = uint(maxSteps)
	}

	// Read the requested output times: either an explicit list, or an end
	// offset with a number of evenly spaced points.
	var times []float64
	if viper.IsSet("propagation.times") {
		for _, v := range viper.Get("propagation.times").([]interface{}) {
			times = append(times, toFloat(v))
		}
	} else {
		until := viper.GetFloat64("propagation.until")
		points := viper.GetInt("propagation.points")
		if points < 2 {
			points = 2
		}
		for i := 0; i < points; i++ {
			times = append(times, until*float64(i)/float64(points-1))
		}
	}

	start := time.Now()
	states, err := poliastro.Propagate(state, times, cfg, perts)
	if err != nil {
		log.Fatalf("propagation failed: %s", err)
	}
	log.Printf("propagated %d points in %s", len(states), time.Since(start))

	// Exports
	conf := poliastro.ExportConfig{
		Filename:  viper.GetString("export.filename"),
		Cosmo:     viper.GetBool("export.cosmo"),
		AsCSV:     viper.GetBool("export.csv"),
		Timestamp: viper.GetBool("export.timestamp"),
	}
	if conf.Filename == "" {
		conf.Filename = scenario
	}
	if !conf.IsUseless() {
		written, err := poliastro.ExportTrajectory(conf.Filename, epoch, times, states, centralBody, conf)
		if err != nil {
			log.Fatalf("export failed: %s", err)
		}
		for _, path := range written {
			log.Printf("wrote %s", path)
		}
	} else {
		final := states[len(states)-1]
		fmt.Printf("final state (t=%f s): %s\n", times[len(times)-1], final)
	}
}

// confReadJDEorTime reads the scenario value as either a Julian date or a
// civil date time.
func confReadJDEorTime(key string) (dt time.Time) {
	jde := viper.GetFloat64(key)
	if jde > 0 {
		dt = julian.JDToTime(jde)
	} else {
		var err error
		dt, err = time.ParseInLocation(dateFormat, viper.GetString(key), time.UTC)
		if err != nil {
			log.Fatalf("could not read %s: %s", key, err)
		}
	}
	return
}

func floatSlice(vals []interface{}) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = toFloat(v)
	}
	return out
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	default:
		log.Fatalf("cannot read `%v` as a number", v)
		return 0
	}
}
