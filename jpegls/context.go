package jpegls

// contextCount is the number of regular mode contexts after sign folding.
const contextCount = 365

// Context holds the statistics of one regular mode context.
type Context struct {
	A int // accumulated error magnitude
	B int // accumulated bias
	C int // prediction correction
	N int // occurrence count
}

func newContext(rng int) Context {
	return Context{A: max(2, (rng+32)/64), N: 1}
}

// GolombParameter returns the smallest k with N<<k >= A.
func (c *Context) GolombParameter() int {
	k := 0
	for (c.N << uint(k)) < c.A {
		k++
	}
	return k
}

// errorCorrection is -1 when the error must be inverted before mapping,
// which only happens in lossless mode with k == 0.
func (c *Context) errorCorrection(k, near int) int {
	if k != 0 || near != 0 {
		return 0
	}
	if 2*c.B+c.N-1 < 0 {
		return -1
	}
	return 0
}

// Update applies the variable and bias updates of T.87 A.6.
func (c *Context) Update(e, near, reset int) {
	c.A += abs(e)
	c.B += e * (2*near + 1)
	if c.N == reset {
		c.A >>= 1
		c.B >>= 1
		c.N >>= 1
	}
	c.N++

	if c.B+c.N <= 0 {
		c.B += c.N
		if c.B <= -c.N {
			c.B = -c.N + 1
		}
		if c.C > -128 {
			c.C--
		}
	} else if c.B > 0 {
		c.B -= c.N
		if c.B > 0 {
			c.B = 0
		}
		if c.C < 127 {
			c.C++
		}
	}
}

// RunContext holds the statistics of a run interruption context.
type RunContext struct {
	A      int
	N      int
	Nn     int
	RIType int
}

func newRunContext(riType, rng int) RunContext {
	return RunContext{A: max(2, (rng+32)/64), N: 1, RIType: riType}
}

// GolombParameter returns k for the interruption sample.
func (c *RunContext) GolombParameter() int {
	temp := c.A + (c.N>>1)*c.RIType
	k := 0
	for (c.N << uint(k)) < temp {
		k++
	}
	return k
}

func (c *RunContext) computeMap(e, k int) bool {
	switch {
	case k == 0 && e > 0 && 2*c.Nn < c.N:
		return true
	case e < 0 && 2*c.Nn >= c.N:
		return true
	case e < 0 && k != 0:
		return true
	}
	return false
}

// errorValue inverts the interruption mapping for temp = EMErrval + RIType.
func (c *RunContext) errorValue(temp, k int) int {
	mapped := temp&1 == 1
	v := (temp + temp&1) / 2
	if (k != 0 || 2*c.Nn >= c.N) == mapped {
		return -v
	}
	return v
}

// Update applies the run interruption updates of T.87 A.7.2.
func (c *RunContext) Update(e, emapped, reset int) {
	if e < 0 {
		c.Nn++
	}
	c.A += (emapped + 1 - c.RIType) >> 1
	if c.N == reset {
		c.A >>= 1
		c.N >>= 1
		c.Nn >>= 1
	}
	c.N++
}

// contexts is the complete adaptive state of one scan.
type contexts struct {
	regular  [contextCount]Context
	run      [2]RunContext
	runIndex int
}

func newContexts(t Traits) *contexts {
	c := &contexts{}
	for i := range c.regular {
		c.regular[i] = newContext(t.Range)
	}
	c.run[0] = newRunContext(0, t.Range)
	c.run[1] = newRunContext(1, t.Range)
	return c
}

func (c *contexts) incrementRunIndex() {
	if c.runIndex < 31 {
		c.runIndex++
	}
}

func (c *contexts) decrementRunIndex() {
	if c.runIndex > 0 {
		c.runIndex--
	}
}

// contextID folds quantized gradients into a signed id in [-364, 364].
func contextID(q1, q2, q3 int) int {
	return (q1*9+q2)*9 + q3
}

// mapError is the standard error mapping of T.87 A.5.2.
func mapError(e int) int {
	if e >= 0 {
		return 2 * e
	}
	return -2*e - 1
}

func unmapError(m int) int {
	if m&1 == 0 {
		return m >> 1
	}
	return -((m + 1) >> 1)
}
