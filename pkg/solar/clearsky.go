// Package solar provides clear-sky irradiance estimates used by the
// synthetic climate data source when no gridded dataset is available.
package solar

import (
	"math"
	"time"
)

const (
	solarConstant  = 1361.0 // W/m² at the top of the atmosphere, annual mean
	linkeTurbidity = 2.0    // clear-sky Linke turbidity factor (typical range 2-6)
)

// degToRad converts an angle from degrees to radians
func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// radToDeg converts an angle from radians to degrees
func radToDeg(rad float64) float64 {
	return rad * (180.0 / math.Pi)
}

// fixAngle normalizes an angle to the range [0, 360) degrees
func fixAngle(angle float64) float64 {
	return math.Mod(angle+360, 360)
}

// jdFromTime converts a UTC time to Julian Day
func jdFromTime(t time.Time) float64 {
	return 2440587.5 + float64(t.Unix())/86400.0
}

// equationOfTime returns the difference between apparent and mean solar
// time, in minutes, for the given instant.
func equationOfTime(t time.Time) float64 {
	jd := jdFromTime(t)
	T := (jd - 2451545.0) / 36525.0 // Julian centuries since J2000.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))            // mean longitude of the Sun
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))             // mean anomaly of the Sun
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)                  // orbital eccentricity
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60 // mean obliquity of the ecliptic

	y := math.Tan(degToRad(eps0)/2) * math.Tan(degToRad(eps0)/2)
	eqTimeMin := radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4

	return eqTimeMin
}

// zenithAngle returns the solar zenith angle in degrees for the given UTC
// instant and location.
func zenithAngle(t time.Time, latitude, longitude float64) float64 {
	N := t.YearDay()

	// Solar declination, approximated sinusoidally with solstice peaks
	delta := 23.45 * math.Sin(degToRad(360.0/365.0*float64(N-81)))

	// Hour angle from true solar time
	utcMin := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60.0
	timeOffset := 4*longitude + equationOfTime(t)
	tst := utcMin + timeOffset
	H := (tst / 4) - 180

	latRad := degToRad(latitude)
	deltaRad := degToRad(delta)
	cosThetaZ := math.Sin(latRad)*math.Sin(deltaRad) + math.Cos(latRad)*math.Cos(deltaRad)*math.Cos(degToRad(H))
	return radToDeg(math.Acos(cosThetaZ))
}

// ClearSkyGHI computes Global Horizontal Irradiance in W/m² for the given
// UTC instant using the Ineichen-Perez clear-sky model.
func ClearSkyGHI(t time.Time, latitude, longitude, altitude float64) float64 {
	N := t.YearDay()
	thetaZ := zenithAngle(t, latitude, longitude)

	if thetaZ >= 90.0 {
		return 0.0 // sun below horizon
	}

	// Extraterrestrial radiation, adjusted for Earth-Sun distance
	G0 := solarConstant * (1 + 0.033*math.Cos(degToRad(360.0*(float64(N)-3)/365.0)))

	// Kasten-Young air mass
	AM := 1.0 / (math.Cos(degToRad(thetaZ)) + 0.50572*math.Pow(96.07995-thetaZ, -1.6364))

	c := 0.7   // DNI normalization constant
	a := 0.027 // atmospheric extinction coefficient
	DNI := G0 * c * math.Exp(-a*AM*linkeTurbidity*math.Exp(-altitude/8000.0))

	// Diffuse fraction with a mild seasonal swing
	fh := 0.1 + 0.05*math.Sin(math.Pi*float64(N-100)/365.0)
	DHI := fh * G0 * math.Sin(degToRad(thetaZ))

	return DNI*math.Cos(degToRad(thetaZ)) + DHI
}

// MonthlyMeanGHI returns the daylight-hours mean clear-sky GHI in W/m² for
// the given month, sampled hourly on the 15th of the month. It is the
// monthly insolation figure the synthetic data source reports.
func MonthlyMeanGHI(year int, month time.Month, latitude, longitude, altitude float64) float64 {
	day := time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)

	var sum float64
	var daylight int
	for hour := 0; hour < 24; hour++ {
		ghi := ClearSkyGHI(day.Add(time.Duration(hour)*time.Hour), latitude, longitude, altitude)
		if ghi > 0 {
			sum += ghi
			daylight++
		}
	}
	if daylight == 0 {
		return 0.0 // polar night
	}
	return sum / float64(daylight)
}
