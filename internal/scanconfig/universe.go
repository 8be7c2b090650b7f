package scanconfig

// DefaultTickers is the built-in universe: indices plus large caps from
// Germany, the rest of Europe and the USA.
func DefaultTickers() []string {
	return []string{
		"^GDAXI", "^NDX", "^GSPC", "^STOXX50E", "^DJI", "^FTSE", "^N225",
		"SAP.DE", "SIE.DE", "IFX.DE", "ASML.AS", "SY1.DE", "BC8.DE", "BAYN.DE",
		"MRK.DE", "FRE.DE", "CBK.DE", "SRT3.DE", "QIA.DE", "RWE.DE", "EOAN.DE",
		"VOW3.DE", "P911.DE", "PAH3.DE", "RHM.DE", "MTX.DE", "HEI.DE",
		"DHER.DE", "HEN3.DE", "ALV.DE", "DBK.DE", "MUV2.DE", "HNR1.DE",
		"TKA.DE", "BMW.DE", "MBG.DE", "ADS.DE", "PUM.DE", "DHL.DE", "BEI.DE",
		"ZAL.DE", "ENR.DE", "OR.PA", "BNP.PA", "DG.PA", "AI.PA", "BAS.DE",
		"LIN.DE", "1COV.DE", "HFG.DE", "WCH.DE", "AAPL", "MSFT", "GOOGL",
		"NVDA", "META", "AMZN", "ORCL", "IBM", "GOOG", "SHOP", "INTC", "AMD",
		"QCOM", "AVGO", "MU", "LRCX", "TXN", "AMAT", "ARM", "NXPI", "ADI",
		"MCHP", "ON", "ADBE", "CRM", "NFLX", "CSCO", "WDAY", "VEEV", "NOW",
		"PANW", "SNOW", "PLTR", "CRWD", "DDOG", "MDB", "JNJ", "PFE", "UNH",
		"MRK", "ABBV", "AMGN", "LLY", "NVO", "BMY", "GILD", "VRTX", "REGN",
		"TMO", "EW", "BSX", "ABT", "ISRG", "MDT", "SYK", "ZBH", "JPM", "BAC",
		"WFC", "C", "GS", "MS", "BLK", "SCHW", "USB", "PNC", "BK", "BRK-B",
		"AIG", "ALL", "PGR", "TRV", "CB", "XOM", "CVX", "COP", "MPC", "PSX",
		"SLB", "EOG", "KMI", "OKE", "BA", "CAT", "MMM", "RTX", "GE", "HON",
		"DE", "ETN", "EMR", "NOC", "TSLA", "MCD", "NKE", "TJX", "COST", "HD",
		"BKNG", "SBUX", "LOW", "CMG", "MAR", "RCL", "PG", "KO", "MO", "PM",
		"WMT", "PEP", "CL", "MDLZ", "GIS", "KHC", "KMB", "NEM", "FCX", "APD",
		"LYB", "DOW", "DD", "ECL", "T", "VZ", "DIS", "CMCSA", "CHTR", "TMUS",
		"WBD", "PARA", "NEE", "DUK", "SO", "EXC", "D", "AEP", "SRE", "XEL",
		"PLD", "AMT", "CCI", "EQIX", "PSA", "O", "SPG", "WELL", "MC.PA",
		"AIR.PA", "SU.PA", "SAN.PA", "TTE.PA", "RMS.PA", "SHEL", "NESN.SW",
		"NOVN.SW", "ROG.SW", "ULVR.L", "AZN.L", "GSK.L", "HSBA.L", "RIO.L",
		"BP.L",
	}
}
