package lsm6dso16is

// Sensitivities from the datasheet, mg or mdps per LSB at each full scale.

func FromFS2GToMg(lsb int16) float64  { return float64(lsb) * 0.061 }
func FromFS4GToMg(lsb int16) float64  { return float64(lsb) * 0.122 }
func FromFS8GToMg(lsb int16) float64  { return float64(lsb) * 0.244 }
func FromFS16GToMg(lsb int16) float64 { return float64(lsb) * 0.488 }

func FromFS125DPSToMdps(lsb int16) float64  { return float64(lsb) * 4.375 }
func FromFS250DPSToMdps(lsb int16) float64  { return float64(lsb) * 8.75 }
func FromFS500DPSToMdps(lsb int16) float64  { return float64(lsb) * 17.50 }
func FromFS1000DPSToMdps(lsb int16) float64 { return float64(lsb) * 35.0 }
func FromFS2000DPSToMdps(lsb int16) float64 { return float64(lsb) * 70.0 }

func FromLsbToCelsius(lsb int16) float64 { return float64(lsb)/256.0 + 25.0 }

// AccelToMg converts a raw sample at the given full scale.
func AccelToMg(fs AccelFS, lsb int16) float64 {
	switch fs {
	case AccelFS4G:
		return FromFS4GToMg(lsb)
	case AccelFS8G:
		return FromFS8GToMg(lsb)
	case AccelFS16G:
		return FromFS16GToMg(lsb)
	}
	return FromFS2GToMg(lsb)
}

// GyroToMdps converts a raw sample at the given full scale.
func GyroToMdps(fs GyroFS, lsb int16) float64 {
	switch fs {
	case GyroFS125DPS:
		return FromFS125DPSToMdps(lsb)
	case GyroFS500DPS:
		return FromFS500DPSToMdps(lsb)
	case GyroFS1000DPS:
		return FromFS1000DPSToMdps(lsb)
	case GyroFS2000DPS:
		return FromFS2000DPSToMdps(lsb)
	}
	return FromFS250DPSToMdps(lsb)
}
