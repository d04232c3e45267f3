// Package integrator provides an adaptive explicit Runge-Kutta integrator
// with dense output for first order systems y' = f(t, y).
package integrator

import (
	"errors"
	"fmt"
	"math"
)

// Func evaluates the derivative dy of the state y at time t. The dy slice is
// owned by the integrator and must be filled in place.
type Func func(t float64, y, dy []float64) error

var (
	// ErrStepUnderflow is returned when the step size controller cannot
	// satisfy the tolerances above the minimum step size.
	ErrStepUnderflow = errors.New("integrator: step size underflow")
	// ErrStepLimit is returned when the accepted step budget is exhausted.
	ErrStepLimit = errors.New("integrator: maximum number of steps reached")
)

// Config holds the integration tolerances and step bounds.
type Config struct {
	InitialStep float64 // initial step size guess; 0 means automatic
	MinStep     float64 // smallest allowed step magnitude
	MaxStep     float64 // largest allowed step magnitude
	RTol        float64 // relative tolerance
	ATol        float64 // absolute tolerance
	MaxSteps    uint    // accepted step budget; 0 means unlimited
	Backward    bool    // integrate toward decreasing t
}

// DefaultConfig returns the tolerances used when the caller does not care.
func DefaultConfig() Config {
	return Config{MinStep: 1e-12, MaxStep: math.Inf(1), RTol: 1e-10, ATol: 1e-12}
}

// Validate returns an error if the configuration is not usable.
func (c Config) Validate() error {
	if c.RTol <= 0 || c.ATol <= 0 {
		return fmt.Errorf("integrator: tolerances must be positive (rtol=%g atol=%g)", c.RTol, c.ATol)
	}
	if c.MinStep < 0 || c.MaxStep <= 0 {
		return fmt.Errorf("integrator: invalid step bounds (min=%g max=%g)", c.MinStep, c.MaxStep)
	}
	if c.MinStep > c.MaxStep {
		return fmt.Errorf("integrator: MinStep %g exceeds MaxStep %g", c.MinStep, c.MaxStep)
	}
	if c.InitialStep < 0 {
		return fmt.Errorf("integrator: negative initial step %g", c.InitialStep)
	}
	return nil
}

// Statistics reports the work performed so far.
type Statistics struct {
	Steps       uint // accepted steps
	Rejected    uint // rejected trial steps
	Evaluations uint // derivative evaluations
	LastStep    float64
	NextStep    float64
	CurrentTime float64
}

// Step size controller constants.
const (
	safety    = 0.9
	minShrink = 0.2
	maxGrowth = 10.0
	errExp    = 1. / 8
)

// Dormand-Prince 8(5,3) coefficients (Hairer's dop853). The first twelve
// stages build the eighth order solution, stage thirteen is the derivative at
// the new point reused as the first stage of the next step, and the last
// three stages only feed the order seven interpolant.
var dp8C = [16]float64{
	0,
	5.26001519587677318785587544488e-2,
	7.89002279381515978178381316732e-2,
	1.18350341907227396726757197510e-1,
	2.81649658092772603273242802490e-1,
	3.33333333333333333333333333333e-1,
	0.25,
	3.07692307692307692307692307692e-1,
	6.51282051282051282051282051282e-1,
	0.6,
	8.57142857142857142857142857142e-1,
	1.0,
	1.0,
	0.1,
	0.2,
	7.77777777777777777777777777778e-1,
}

var dp8A = [16][16]float64{
	1: {5.26001519587677318785587544488e-2},
	2: {1.97250569845378994544595329183e-2, 5.91751709536136983633785987549e-2},
	3: {2.95875854768068491816892993775e-2, 0, 8.87627564304205475450678981324e-2},
	4: {2.41365134159266685502369798665e-1, 0, -8.84549479328286085344864962717e-1,
		9.24834003261792003115737966543e-1},
	5: {3.7037037037037037037037037037e-2, 0, 0, 1.70828608729473871279604482173e-1,
		1.25467687566822425016691814123e-1},
	6: {3.7109375e-2, 0, 0, 1.70252211019544039314978060272e-1,
		6.02165389804559606850219397283e-2, -1.7578125e-2},
	7: {3.70920001185047927108779319836e-2, 0, 0, 1.70383925712239993810214054705e-1,
		1.07262030446373284651809199168e-1, -1.53194377486244017527936158236e-2,
		8.27378916381402288758473766002e-3},
	8: {6.24110958716075717114429577812e-1, 0, 0, -3.36089262944694129406857109825,
		-8.68219346841726006818189891453e-1, 2.75920996994467083049415600797e1,
		2.01540675504778934086186788979e1, -4.34898841810699588477366255144e1},
	9: {4.77662536438264365890433908527e-1, 0, 0, -2.48811461997166764192642586468,
		-5.90290826836842996371446475743e-1, 2.12300514481811942347288949897e1,
		1.52792336328824235832596922938e1, -3.32882109689848629194453265587e1,
		-2.03312017085086261358222928593e-2},
	10: {-9.3714243008598732571704021658e-1, 0, 0, 5.18637242884406370830023853209,
		1.09143734899672957818500254654, -8.14978701074692612513997267357,
		-1.85200656599969598641566180701e1, 2.27394870993505042818970056734e1,
		2.49360555267965238987089396762, -3.0467644718982195003823669022},
	11: {2.27331014751653820792359768449, 0, 0, -1.05344954667372501984066689879e1,
		-2.00087205822486249909675718444, -1.79589318631187989172765950534e1,
		2.79488845294199600508499808837e1, -2.85899827713502369474065508674,
		-8.87285693353062954433549289258, 1.23605671757943030647266201528e1,
		6.43392746015763530355970484046e-1},
	13: {5.61675022830479523392909219681e-2, 0, 0, 0, 0, 0,
		2.53500210216624811088794765333e-1, -2.46239037470802489917441475441e-1,
		-1.24191423263816360469010140626e-1, 1.5329179827876569731206322685e-1,
		8.20105229563468988491666602057e-3, 7.56789766054569976138603589584e-3,
		-8.298e-3},
	14: {3.18346481635021405060768473261e-2, 0, 0, 0, 0,
		2.83009096723667755288322961402e-2, 5.35419883074385676223797384372e-2,
		-5.49237485713909884646569340306e-2, 0, 0,
		-1.08347328697249322858509316994e-4, 3.82571090835658412954920192323e-4,
		-3.40465008687404560802977114492e-4, 1.41312443674632500278074618366e-1},
	15: {-4.28896301583791923408573538692e-1, 0, 0, 0, 0,
		-4.69762141536116384314449447206, 7.68342119606259904184240953878,
		4.06898981839711007970213554331, 3.56727187455281109270669543021e-1,
		0, 0, 0, -1.39902416515901462129418009734e-3,
		2.9475147891527723389556272149, -9.15095847217987001081870187138},
}

// Eighth order weights.
var dp8B = [12]float64{
	5.42937341165687622380535766363e-2, 0, 0, 0, 0,
	4.45031289275240888144113950566,
	1.89151789931450038304281599044,
	-5.8012039600105847814672114227,
	3.1116436695781989440891606237e-1,
	-1.52160949662516078556178806805e-1,
	2.01365400804030348374776537501e-1,
	4.47106157277725905176885569043e-2,
}

// Fifth order error weights.
var dp8E5 = [12]float64{
	0.1312004499419488073250102996e-1, 0, 0, 0, 0,
	-0.1225156446376204440720569753e1,
	-0.4957589496572501915214079952,
	0.1664377182454986536961530415e1,
	-0.3503288487499736816886487290,
	0.3341791187130174790297318841,
	0.8192320648511571246570742613e-1,
	-0.2235530786388629525884427845e-1,
}

// Third order error weights, the eighth order weights minus the embedded
// third order scheme.
var dp8E3 = func() [12]float64 {
	e := dp8B
	e[0] -= 0.244094488188976377952755905512
	e[8] -= 0.733846688281611857341361741547
	e[11] -= 0.220588235294117647058823529412e-1
	return e
}()

// Order seven interpolant coefficients.
var dp8D = [4][16]float64{
	{-0.84289382761090128651353491142e1, 0, 0, 0, 0,
		0.56671495351937776962531783590,
		-0.30689499459498916912797304727e1,
		0.23846676565120698287728149680e1,
		0.21170345824450282767155149946e1,
		-0.87139158377797299206789907490,
		0.22404374302607882758541771650e1,
		0.63157877876946881815570249290,
		-0.88990336451333310820698117400e-1,
		0.18148505520854727256656404962e2,
		-0.91946323924783554000451984436e1,
		-0.44360363875948939664310572000e1},
	{0.10427508642579134603413151009e2, 0, 0, 0, 0,
		0.24228349177525818288430175319e3,
		0.16520045171727028198505394887e3,
		-0.37454675472269020279518312152e3,
		-0.22113666853125306036270938578e2,
		0.77334326684722638389603898808e1,
		-0.30674084731089398182061213626e2,
		-0.93321305264302278729567221706e1,
		0.15697238121770843886131091075e2,
		-0.31139403219565177677282850411e2,
		-0.93529243588444783865713862664e1,
		0.35816841486394083752465898540e2},
	{0.19985053242002433820987653617e2, 0, 0, 0, 0,
		-0.38703730874935176555105901742e3,
		-0.18917813819516756882830838328e3,
		0.52780815920542364900561016686e3,
		-0.11573902539959630126141871134e2,
		0.68812326946963000169666922661e1,
		-0.10006050966910838403183860980e1,
		0.77771377980534432092869265740,
		-0.27782057523535084065932004339e1,
		-0.60196695231264120758267380846e2,
		0.84320405506677161018159903784e2,
		0.11992291136182789328035130030e2},
	{-0.25693933462703749003312586129e2, 0, 0, 0, 0,
		-0.15418974869023643374053993627e3,
		-0.23152937917604549567536039109e3,
		0.35763911791061412378285349910e3,
		0.93405324183624310003907691704e2,
		-0.37458323136451633156875139351e2,
		0.10409964950896230045147246184e3,
		0.29840293426660503123344363579e2,
		-0.43533456590011143754432175058e2,
		0.96324553959188282948394950600e2,
		-0.39177261675615439165231486172e2,
		-0.14972683625798562581422125276e3},
}

// RK853 integrates y' = f(t, y) with the Dormand-Prince 8(5,3) embedded pair
// and an order seven dense output over the last accepted step.
type RK853 struct {
	f   Func
	cfg Config
	n   int
	dir float64

	t, tPrev float64
	y, yPrev []float64
	k        [16][]float64
	rcont    [8][]float64

	h, hLast  float64
	stats     Statistics
	firstStep bool
}

// NewRK853 prepares an integration of y' = f(t, y) starting at (t0, y0).
func NewRK853(f Func, t0 float64, y0 []float64, cfg Config) (*RK853, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(y0) == 0 {
		return nil, errors.New("integrator: empty initial state")
	}
	rk := &RK853{f: f, cfg: cfg, n: len(y0), dir: 1, t: t0, tPrev: t0, firstStep: true}
	if cfg.Backward {
		rk.dir = -1
	}
	rk.y = make([]float64, rk.n)
	rk.yPrev = make([]float64, rk.n)
	copy(rk.y, y0)
	copy(rk.yPrev, y0)
	for s := range rk.k {
		rk.k[s] = make([]float64, rk.n)
	}
	for s := range rk.rcont {
		rk.rcont[s] = make([]float64, rk.n)
	}
	if err := rk.f(rk.t, rk.y, rk.k[0]); err != nil {
		return nil, err
	}
	rk.stats.Evaluations++
	if cfg.InitialStep > 0 {
		rk.h = rk.dir * cfg.InitialStep
	} else if err := rk.bootstrapStep(); err != nil {
		return nil, err
	}
	rk.stats.NextStep = rk.h
	rk.stats.CurrentTime = rk.t
	return rk, nil
}

// bootstrapStep sizes the first step from the magnitude of the state and its
// first two derivatives (Hairer's HINIT).
func (rk *RK853) bootstrapStep() error {
	d0, d1 := 0.0, 0.0
	for i := 0; i < rk.n; i++ {
		sc := rk.cfg.ATol + rk.cfg.RTol*math.Abs(rk.y[i])
		d0 += (rk.y[i] / sc) * (rk.y[i] / sc)
		d1 += (rk.k[0][i] / sc) * (rk.k[0][i] / sc)
	}
	d0 = math.Sqrt(d0 / float64(rk.n))
	d1 = math.Sqrt(d1 / float64(rk.n))
	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	// Explicit Euler trial step to estimate the second derivative.
	yTrial := make([]float64, rk.n)
	for i := 0; i < rk.n; i++ {
		yTrial[i] = rk.y[i] + rk.dir*h0*rk.k[0][i]
	}
	if err := rk.f(rk.t+rk.dir*h0, yTrial, rk.k[1]); err != nil {
		return err
	}
	rk.stats.Evaluations++
	d2 := 0.0
	for i := 0; i < rk.n; i++ {
		sc := rk.cfg.ATol + rk.cfg.RTol*math.Abs(rk.y[i])
		diff := (rk.k[1][i] - rk.k[0][i]) / sc
		d2 += diff * diff
	}
	d2 = math.Sqrt(d2/float64(rk.n)) / h0
	h1 := math.Max(1e-6, h0*1e-3)
	if m := math.Max(d1, d2); m > 1e-15 {
		h1 = math.Pow(0.01/m, errExp)
	}
	h := math.Min(100*h0, h1)
	h = math.Min(h, rk.cfg.MaxStep)
	h = math.Max(h, rk.cfg.MinStep)
	rk.h = rk.dir * h
	return nil
}

// Step advances the solution by one accepted step, retrying internally with
// smaller trial steps until the error estimate passes.
func (rk *RK853) Step() error {
	if rk.cfg.MaxSteps > 0 && rk.stats.Steps >= rk.cfg.MaxSteps {
		return ErrStepLimit
	}
	h := rk.h
	yNew := make([]float64, rk.n)
	rejected := false
	for {
		if math.Abs(h) > rk.cfg.MaxStep {
			h = rk.dir * rk.cfg.MaxStep
		}
		// Stages two through twelve; the first stage is carried over from
		// the previous accepted step.
		for s := 1; s < 12; s++ {
			for i := 0; i < rk.n; i++ {
				acc := 0.0
				for j := 0; j < s; j++ {
					acc += dp8A[s][j] * rk.k[j][i]
				}
				yNew[i] = rk.y[i] + h*acc
			}
			if err := rk.f(rk.t+h*dp8C[s], yNew, rk.k[s]); err != nil {
				return err
			}
			rk.stats.Evaluations++
		}
		for i := 0; i < rk.n; i++ {
			acc := 0.0
			for j := 0; j < 12; j++ {
				acc += dp8B[j] * rk.k[j][i]
			}
			yNew[i] = rk.y[i] + h*acc
		}
		// Combined fifth and third order error estimate. The damping by the
		// third order term makes the estimate behave like order eight.
		err5n, err3n := 0.0, 0.0
		for i := 0; i < rk.n; i++ {
			sc := rk.cfg.ATol + rk.cfg.RTol*math.Max(math.Abs(rk.y[i]), math.Abs(yNew[i]))
			e5, e3 := 0.0, 0.0
			for j := 0; j < 12; j++ {
				e5 += dp8E5[j] * rk.k[j][i]
				e3 += dp8E3[j] * rk.k[j][i]
			}
			err5n += (e5 / sc) * (e5 / sc)
			err3n += (e3 / sc) * (e3 / sc)
		}
		errNorm := 0.0
		if denom := err5n + 0.01*err3n; denom > 0 {
			errNorm = math.Abs(h) * err5n / math.Sqrt(denom*float64(rk.n))
		}
		if errNorm <= 1 {
			factor := maxGrowth
			if errNorm > 0 {
				factor = math.Min(maxGrowth, math.Max(minShrink, safety*math.Pow(errNorm, -errExp)))
			}
			if rejected {
				factor = math.Min(factor, 1)
			}
			// Derivative at the new point; it seeds the interpolant and is
			// reused as the first stage of the next step.
			if err := rk.f(rk.t+h, yNew, rk.k[12]); err != nil {
				return err
			}
			rk.stats.Evaluations++
			if err := rk.prepareDense(h, yNew); err != nil {
				return err
			}
			rk.tPrev = rk.t
			copy(rk.yPrev, rk.y)
			rk.t += h
			copy(rk.y, yNew)
			copy(rk.k[0], rk.k[12])
			rk.hLast = h
			next := math.Abs(h) * factor
			next = math.Min(next, rk.cfg.MaxStep)
			next = math.Max(next, rk.cfg.MinStep)
			rk.h = rk.dir * next
			rk.firstStep = false
			rk.stats.Steps++
			rk.stats.LastStep = h
			rk.stats.NextStep = rk.h
			rk.stats.CurrentTime = rk.t
			return nil
		}
		rk.stats.Rejected++
		if math.Abs(h) <= rk.cfg.MinStep {
			return ErrStepUnderflow
		}
		factor := math.Max(minShrink, safety*math.Pow(errNorm, -errExp))
		h = rk.dir * math.Max(math.Abs(h)*factor, rk.cfg.MinStep)
		rejected = true
	}
}

// prepareDense evaluates the three extra stages and assembles the order
// seven interpolant over [tPrev, t]. Must run before the step is committed.
func (rk *RK853) prepareDense(h float64, yNew []float64) error {
	yTmp := make([]float64, rk.n)
	for s := 13; s < 16; s++ {
		for i := 0; i < rk.n; i++ {
			acc := 0.0
			for j := 0; j < s; j++ {
				acc += dp8A[s][j] * rk.k[j][i]
			}
			yTmp[i] = rk.y[i] + h*acc
		}
		if err := rk.f(rk.t+h*dp8C[s], yTmp, rk.k[s]); err != nil {
			return err
		}
		rk.stats.Evaluations++
	}
	for i := 0; i < rk.n; i++ {
		ydiff := yNew[i] - rk.y[i]
		bspl := h*rk.k[0][i] - ydiff
		rk.rcont[0][i] = rk.y[i]
		rk.rcont[1][i] = ydiff
		rk.rcont[2][i] = bspl
		rk.rcont[3][i] = ydiff - h*rk.k[12][i] - bspl
		for d := 0; d < 4; d++ {
			acc := 0.0
			for j := 0; j < 16; j++ {
				acc += dp8D[d][j] * rk.k[j][i]
			}
			rk.rcont[4+d][i] = h * acc
		}
	}
	return nil
}

// Interpolate fills dst with the solution at time t, which must lie within
// the last accepted step. No derivative evaluations are performed.
func (rk *RK853) Interpolate(t float64, dst []float64) error {
	if rk.firstStep {
		return errors.New("integrator: no step accepted yet")
	}
	h := rk.hLast
	θ := (t - rk.tPrev) / h
	if θ < -1e-12 || θ > 1+1e-12 {
		return fmt.Errorf("integrator: time %g outside the last step [%g, %g]", t, rk.tPrev, rk.t)
	}
	θ1 := 1 - θ
	for i := 0; i < rk.n; i++ {
		dst[i] = rk.rcont[0][i] + θ*(rk.rcont[1][i]+θ1*(rk.rcont[2][i]+θ*(rk.rcont[3][i]+
			θ1*(rk.rcont[4][i]+θ*(rk.rcont[5][i]+θ1*(rk.rcont[6][i]+θ*rk.rcont[7][i]))))))
	}
	return nil
}

// Time returns the time of the last accepted step.
func (rk *RK853) Time() float64 { return rk.t }

// PrevTime returns the time before the last accepted step.
func (rk *RK853) PrevTime() float64 { return rk.tPrev }

// StateInto copies the current state into dst.
func (rk *RK853) StateInto(dst []float64) { copy(dst, rk.y) }

// Stats returns a snapshot of the work counters.
func (rk *RK853) Stats() Statistics { return rk.stats }
