package emwin

// Lookup tables from attachment II-5 of WMO manual 386. Only the entries
// that actually occur on the EMWIN relay are carried; anything else maps
// to an Unknown value rather than failing the parse.

// DataTypeT1 is the first letter of a WMO abbreviated heading and names
// the broad data category.
type DataTypeT1 byte

const (
	T1Analyses         DataTypeT1 = 'A'
	T1ClimaticData     DataTypeT1 = 'C'
	T1GridD            DataTypeT1 = 'D'
	T1SatelliteImg     DataTypeT1 = 'E'
	T1Forecasts        DataTypeT1 = 'F'
	T1GridG            DataTypeT1 = 'G'
	T1GridH            DataTypeT1 = 'H'
	T1Observational    DataTypeT1 = 'I'
	T1ForecastBinary   DataTypeT1 = 'J'
	T1CREX             DataTypeT1 = 'K'
	T1AviationXML      DataTypeT1 = 'L'
	T1Notices          DataTypeT1 = 'N'
	T1Oceanographic    DataTypeT1 = 'O'
	T1Pictoral         DataTypeT1 = 'P'
	T1PictoralRegional DataTypeT1 = 'Q'
	T1SurfaceData      DataTypeT1 = 'S'
	T1SatelliteData    DataTypeT1 = 'T'
	T1UpperAirData     DataTypeT1 = 'U'
	T1NationalData     DataTypeT1 = 'V'
	T1Warnings         DataTypeT1 = 'W'
	T1CAP              DataTypeT1 = 'X'
	T1GRIB             DataTypeT1 = 'Y'
	T1Unknown          DataTypeT1 = 0
)

func t1From(c byte) DataTypeT1 {
	switch DataTypeT1(c) {
	case T1Analyses, T1ClimaticData, T1GridD, T1SatelliteImg, T1Forecasts,
		T1GridG, T1GridH, T1Observational, T1ForecastBinary, T1CREX,
		T1AviationXML, T1Notices, T1Oceanographic, T1Pictoral,
		T1PictoralRegional, T1SurfaceData, T1SatelliteData, T1UpperAirData,
		T1NationalData, T1Warnings, T1CAP, T1GRIB:
		return DataTypeT1(c)
	}
	return T1Unknown
}

func (t DataTypeT1) String() string {
	switch t {
	case T1Analyses:
		return "Analyses"
	case T1ClimaticData:
		return "Climatic data"
	case T1SatelliteImg:
		return "Satellite imagery"
	case T1Forecasts:
		return "Forecasts"
	case T1Observational:
		return "Observational data (binary)"
	case T1Notices:
		return "Notices"
	case T1Oceanographic:
		return "Oceanographic information"
	case T1Pictoral:
		return "Pictorial information"
	case T1PictoralRegional:
		return "Pictorial information (regional)"
	case T1SurfaceData:
		return "Surface data"
	case T1SatelliteData:
		return "Satellite data"
	case T1UpperAirData:
		return "Upper-air data"
	case T1NationalData:
		return "National data"
	case T1Warnings:
		return "Warnings"
	case T1CAP:
		return "Common Alert Protocol"
	case T1GRIB:
		return "GRIB regional"
	default:
		return "Unknown"
	}
}

// lookupT2 resolves the second heading letter. Which table applies
// depends on T1: most text types use table B1, pictorial types use B6,
// satellite imagery uses B5.
func lookupT2(t1 DataTypeT1, t2 byte) string {
	switch t1 {
	case T1Pictoral, T1PictoralRegional:
		return lookupTableB6(t2)
	case T1SatelliteImg:
		return lookupTableB5(t2)
	default:
		return lookupTableB1(t1, t2)
	}
}

// Table B1: data type designator T2 when T1 is one of the general text
// categories.
func lookupTableB1(t1 DataTypeT1, t2 byte) string {
	switch t1 {
	case T1Analyses:
		switch t2 {
		case 'C':
			return "Cyclone"
		case 'G':
			return "Hydrological/marine"
		case 'H':
			return "Thickness"
		case 'I':
			return "Ice"
		case 'O':
			return "Ozone layer"
		case 'R':
			return "Radar"
		case 'S':
			return "Surface"
		case 'U':
			return "Upper air"
		case 'W':
			return "Weather summary"
		case 'X':
			return "Miscellaneous"
		}
	case T1ClimaticData:
		switch t2 {
		case 'A':
			return "Climatic anomalies"
		case 'E':
			return "Monthly means (upper air)"
		case 'H':
			return "Monthly means (surface)"
		case 'O':
			return "Monthly means (ocean areas)"
		case 'S':
			return "Monthly means (surface)"
		}
	case T1Forecasts:
		switch t2 {
		case 'A':
			return "Aviation area/GAMET/advisories"
		case 'B':
			return "Upper winds and temperatures"
		case 'C':
			return "Aerodrome (VT < 12 hours)"
		case 'D':
			return "Radiological trajectory dose"
		case 'E':
			return "Extended"
		case 'F':
			return "Shipping"
		case 'G':
			return "Hydrological"
		case 'H':
			return "Upper-air thickness"
		case 'I':
			return "Iceberg"
		case 'J':
			return "Radio warning service"
		case 'K':
			return "Tropical cyclone advisories"
		case 'L':
			return "Local/area"
		case 'M':
			return "Temperature extremes"
		case 'N':
			return "Space weather advisories"
		case 'O':
			return "Guidance"
		case 'P':
			return "Public"
		case 'Q':
			return "Other shipping"
		case 'R':
			return "Aviation route"
		case 'S':
			return "Surface"
		case 'T':
			return "Aerodrome (VT >= 12 hours)"
		case 'U':
			return "Upper air"
		case 'V':
			return "Volcanic ash advisories"
		case 'W':
			return "Winter sports"
		case 'X':
			return "Miscellaneous"
		case 'Z':
			return "Shipping area"
		}
	case T1Notices:
		switch t2 {
		case 'G':
			return "Hydrological"
		case 'H':
			return "Marine"
		case 'N':
			return "Nuclear emergency response"
		case 'O':
			return "METNO/WIFMA"
		case 'P':
			return "Product generation delay"
		case 'T':
			return "Test message"
		case 'W':
			return "Warning related/cancellation"
		case 'X':
			return "Other notices"
		}
	case T1SurfaceData:
		switch t2 {
		case 'A':
			return "Aviation routine reports (METAR)"
		case 'B':
			return "Radar reports (part A)"
		case 'C':
			return "Radar reports (part B)"
		case 'D':
			return "Radar reports (parts A and B)"
		case 'E':
			return "Seismic data"
		case 'F':
			return "Atmospherics reports"
		case 'G':
			return "Radiological data reports"
		case 'I':
			return "Intermediate synoptic hour"
		case 'M':
			return "Main synoptic hour"
		case 'N':
			return "Non-standard synoptic hour"
		case 'O':
			return "Oceanographic data"
		case 'P':
			return "Special aviation reports (SPECI)"
		case 'R':
			return "Hydrological (river) reports"
		case 'S':
			return "Drifting buoy reports"
		case 'T':
			return "Sea ice"
		case 'U':
			return "Snow depth"
		case 'V':
			return "Lake ice"
		case 'W':
			return "Wave information"
		case 'X':
			return "Miscellaneous"
		case 'Y':
			return "Seismic waveform data"
		case 'Z':
			return "Sea-level and deep-ocean tsunami data"
		}
	case T1SatelliteData:
		switch t2 {
		case 'B':
			return "Satellite orbit parameters"
		case 'C':
			return "Satellite cloud interpretations"
		case 'H':
			return "Satellite remote upper-air soundings"
		case 'R':
			return "Clear radiance observations"
		case 'T':
			return "Sea surface temperatures"
		case 'W':
			return "Winds and cloud temperatures"
		case 'X':
			return "Miscellaneous"
		}
	case T1UpperAirData:
		switch t2 {
		case 'A':
			return "Aircraft reports (codes 4221)"
		case 'D':
			return "Aircraft reports (AMDAR)"
		case 'E':
			return "Upper-level pressure, temperature, humidity and wind (part D)"
		case 'F':
			return "Upper-level pressure, temperature, humidity and wind (parts C and D)"
		case 'G':
			return "Upper wind (part B)"
		case 'H':
			return "Upper wind (part C)"
		case 'I':
			return "Upper wind (parts A and B)"
		case 'K':
			return "Upper-level pressure, temperature, humidity and wind (part B)"
		case 'L':
			return "Upper-level pressure, temperature, humidity and wind (part C)"
		case 'M':
			return "Upper-level pressure, temperature, humidity and wind (parts A and B)"
		case 'N':
			return "Rocketsonde reports"
		case 'P':
			return "Upper wind (part A)"
		case 'Q':
			return "Upper wind (part D)"
		case 'R':
			return "Aircraft reports (RECCO)"
		case 'S':
			return "Upper-level pressure, temperature, humidity and wind (part A)"
		case 'T':
			return "Aircraft reports (codes 3744)"
		case 'X':
			return "Miscellaneous"
		case 'Y':
			return "Upper wind (parts C and D)"
		case 'Z':
			return "Upper-level pressure, temperature, humidity and wind from a sonde released by carrier balloon or aircraft"
		}
	case T1Warnings:
		switch t2 {
		case 'A':
			return "AIRMET"
		case 'C':
			return "Tropical cyclone (SIGMET)"
		case 'E':
			return "Tsunami"
		case 'F':
			return "Tornado"
		case 'G':
			return "Hydrological/river flood"
		case 'H':
			return "Marine/coastal flood"
		case 'O':
			return "Other"
		case 'R':
			return "Humanitarian activities"
		case 'S':
			return "SIGMET"
		case 'T':
			return "Tropical cyclone (typhoon/hurricane)"
		case 'U':
			return "Severe thunderstorm"
		case 'V':
			return "Volcanic ash clouds (SIGMET)"
		case 'W':
			return "Warnings and weather summary"
		}
	}
	return "Unknown"
}

// Table B5: T2 when T1 = E (satellite imagery).
func lookupTableB5(t2 byte) string {
	switch t2 {
	case 'C':
		return "Cloud top temperature"
	case 'F':
		return "Fog"
	case 'I':
		return "Infrared"
	case 'S':
		return "Surface temperature"
	case 'V':
		return "Visible"
	case 'W':
		return "Water vapour"
	case 'Y':
		return "User specified"
	case 'Z':
		return "Unspecified"
	default:
		return "Unknown"
	}
}

// Table B6: T2 when T1 = P or Q (pictorial products).
func lookupTableB6(t2 byte) string {
	switch t2 {
	case 'A':
		return "Radar data"
	case 'B':
		return "Cloud"
	case 'C':
		return "Clear air turbulence"
	case 'D':
		return "Thickness"
	case 'E':
		return "Precipitation"
	case 'F':
		return "Aerological diagrams"
	case 'G':
		return "Significant weather"
	case 'H':
		return "Height"
	case 'I':
		return "Ice flow"
	case 'J':
		return "Wave height and combinations"
	case 'K':
		return "Swell height and combinations"
	case 'L':
		return "Plain language"
	case 'M':
		return "Medium-range weather"
	case 'N':
		return "Radiation"
	case 'O':
		return "Vertical velocity"
	case 'P':
		return "Pressure"
	case 'Q':
		return "Wet bulb potential temperature"
	case 'R':
		return "Relative humidity"
	case 'S':
		return "Snow cover"
	case 'T':
		return "Temperature"
	case 'U':
		return "Eastward wind component"
	case 'V':
		return "Northward wind component"
	case 'W':
		return "Wind"
	case 'X':
		return "Lifted index"
	case 'Y':
		return "Observational plotted chart"
	case 'Z':
		return "Not assigned"
	default:
		return "Unknown"
	}
}

// Table C1: geographical area designators (A1A2) for the text types.
var areaDesignators = map[string]string{
	"AB": "Albania", "AG": "Argentina", "AK": "Alaska", "AL": "Alabama",
	"AR": "Arkansas", "AS": "Asia", "AU": "Australia", "AZ": "Arizona",
	"BC": "British Columbia", "BO": "Bolivia", "BR": "Brazil",
	"CA": "Caribbean and Central America", "CI": "China", "CL": "Chile",
	"CN": "Canada", "CO": "Colorado", "CR": "Caribbean area", "CS": "Costa Rica",
	"CT": "Connecticut", "CU": "Cuba", "DC": "District of Columbia",
	"DE": "Delaware", "DL": "Germany", "EA": "East Africa", "EC": "Ecuador",
	"EG": "Egypt", "ES": "El Salvador", "EU": "Europe", "FL": "Florida",
	"FR": "France", "GA": "Georgia", "GL": "Greenland", "GM": "Gulf of Mexico",
	"GR": "Greece", "GU": "Guatemala", "GX": "Gulf area", "HI": "Hawaii",
	"HK": "Hong Kong", "HO": "Honduras", "HW": "Hawaiian waters",
	"IA": "Iowa", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana",
	"IO": "Indian Ocean area", "IS": "Iceland", "IY": "Italy", "JP": "Japan",
	"KA": "Kansas", "KO": "Korea", "KY": "Kentucky", "LA": "Louisiana",
	"MA": "Massachusetts", "MD": "Maryland", "ME": "Maine", "MI": "Michigan",
	"MN": "Minnesota", "MO": "Missouri", "MS": "Mississippi", "MT": "Montana",
	"MX": "Mexico", "NB": "Nebraska", "NC": "North Carolina",
	"ND": "North Dakota", "NH": "New Hampshire", "NJ": "New Jersey",
	"NK": "New Mexico", "NL": "Netherlands", "NO": "Norway", "NT": "North Atlantic area",
	"NV": "Nevada", "NY": "New York", "NZ": "New Zealand", "OH": "Ohio",
	"OK": "Oklahoma", "ON": "Ontario", "OR": "Oregon", "PA": "Pennsylvania",
	"PK": "Pakistan", "PN": "North Pacific area", "PR": "Puerto Rico",
	"PS": "South Pacific area", "QB": "Quebec", "RI": "Rhode Island",
	"SA": "South America", "SC": "South Carolina", "SD": "South Dakota",
	"SP": "Spain", "SW": "Sweden", "TH": "Thailand", "TN": "Tennessee",
	"TU": "Turkey", "TX": "Texas", "UK": "United Kingdom", "US": "United States",
	"UT": "Utah", "VA": "Virginia", "VT": "Vermont", "WA": "Washington",
	"WI": "Wisconsin", "WS": "West Africa", "WV": "West Virginia",
	"WY": "Wyoming", "XX": "Undesignated area",
}

// lookupArea resolves the A1A2 area designator; unknown codes are echoed
// back verbatim so nothing about the bulletin is lost.
func lookupArea(aa string) string {
	if name, ok := areaDesignators[aa]; ok {
		return name
	}
	return aa
}
