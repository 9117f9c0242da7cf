// Package domain models NOAA U.S. Climate Reference Network (USCRN) hourly
// station data and the pure transformations applied to it.
//
// # Data Source
//
// Hourly files are published under
// https://www.ncei.noaa.gov/pub/data/uscrn/products/hourly02/ with one
// directory per year. Each directory page lists one file per station:
//
//	CRNH0203-<year>-<state>_<site>_<distance>_<compass>.txt
//	e.g. CRNH0203-2018-AK_Aleknagik_1_NNE.txt
//
// A station file is whitespace-delimited text, one observation hour per line,
// with the columns listed in [HourlySchema].
//
// # Conventions
//
// Station labels:
//
//	The file name without ".txt" and without "CRNH0203-<year>-", cut to 31
//	characters. The cut is a legacy column-width limit and can map two files
//	to one label. See [StationLabel].
//
// Missing values:
//
//	-99 and -9999 mark missing numeric measurements. They are kept as numbers
//	unless [CleanSentinels] is applied, which turns them into null.
//
// Scalar representation:
//
//	Identifiers, dates, times, flags and the surface temperature type stay
//	strings so leading zeros survive ("0100"). Measurements are numbers.
//	[Value] is the only type that reaches JSON.
//
// # Reconciliation
//
// Station inventories change between years. [Reconcile] keeps only stations
// present in every requested year and reports what it dropped.
package domain
