package golbm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/golbm/device"
	"github.com/phil-mansfield/golbm/lbmerr"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, channelConfig().Validate())

	table := []func(con *Config){
		func(con *Config) { con.Nx = 1 },
		func(con *Config) { con.Ny = 0 },
		func(con *Config) { con.Nz = -1 },
		func(con *Config) { con.Dx = 0 },
		func(con *Config) { con.Dz = math.NaN() },
		func(con *Config) { con.Density = 0 },
		func(con *Config) { con.MaxIterations = 0 },
		func(con *Config) { con.OutputInterval = 0 },
		func(con *Config) { con.Tolerance = -1 },
		func(con *Config) { con.FluidSeedFraction = -0.5 },
		func(con *Config) { con.BlockWidth = -8 },
		func(con *Config) { con.Tau = -1 },
		func(con *Config) { con.Viscosity = -1 },
		func(con *Config) { con.Reynolds = 0 },
		func(con *Config) { con.Tau = 0.5 },
		func(con *Config) { con.InletVelocity = [3]float64{} },
		func(con *Config) { con.InletVelocity[1] = math.Inf(1) },
	}

	for i, mod := range table {
		con := channelConfig()
		mod(con)
		if err := con.Validate(); !lbmerr.Is(err, lbmerr.ConfigError) {
			t.Errorf("%d) Expected ConfigError, got %v.", i, err)
		}
	}
}

func TestRelaxationTime(t *testing.T) {
	table := []struct {
		reynolds, viscosity, tau float64
		inlet                    [3]float64
		expected                 float64
	}{
		{10, 0, 0, [3]float64{0.1, 0, 0}, 9*0.001 + 0.5},
		{10, 0, 0, [3]float64{0.02, 0.1, 0.05}, 9*0.001 + 0.5},
		{10, 0.01, 0, [3]float64{0.1, 0, 0}, 9*0.01 + 0.5},
		{10, 0.01, 0.7, [3]float64{0.1, 0, 0}, 0.7},
		{0, 0, 1.2, [3]float64{}, 1.2},
	}

	for i, test := range table {
		con := channelConfig()
		con.Reynolds, con.Viscosity, con.Tau = test.reynolds,
			test.viscosity, test.tau
		con.InletVelocity = test.inlet

		if tau := con.RelaxationTime(); math.Abs(tau-test.expected) > 1e-12 {
			t.Errorf("%d) Expected tau = %g, got %g.", i, test.expected, tau)
		}
		if err := con.Validate(); err != nil {
			t.Errorf("%d) Unexpected error %v.", i, err)
		}
	}
}

func TestConfigNewDevice(t *testing.T) {
	con := channelConfig()
	dev, err := con.NewDevice(true, 0)
	require.NoError(t, err)
	assert.IsType(t, &device.Sequential{}, dev)
	dev.Close()

	con.BlockWidth = 2
	dev, err = con.NewDevice(false, 2)
	require.NoError(t, err)
	require.IsType(t, &device.Parallel{}, dev)
	assert.Equal(t, 2, dev.(*device.Parallel).Workers())
	dev.Close()
}
