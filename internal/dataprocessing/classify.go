package dataprocessing

import (
	"strings"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// suffixToFundType maps the trailing segment of a fund code to its age-cohort label.
var suffixToFundType = map[string]domain.FundType{
	"03/09": "2003-2009",
	"96/02": "1996-2002",
	"89/95": "1989-1995",
	"82/88": "1982-1988",
	"75/81": "1975-1981",
	"68/74": "1968-1974",
	"61/67": "1961-1967",
	"54/60": "1954-1960",
	"TIPF":  "TIPF",
}

// fundOwners maps the leading segment of a fund code to the fund manager.
var fundOwners = map[string]domain.CompanyShort{
	"LMN": "Luminor",
	"INV": "Artea",
	"SBN": "SEB",
	"SWD": "Swedbank",
	"AVI": "Allianz",
	"GOX": "Goindex",
}

// FundTypeFromCode returns the fund type for the text after the last '-' of a fund
// code, or "" when the suffix is not recognized.
func FundTypeFromCode(fundCode string) domain.FundType {
	suffix := fundCode
	if i := strings.LastIndex(fundCode, "-"); i >= 0 {
		suffix = fundCode[i+1:]
	}
	return suffixToFundType[suffix]
}

// OwnerFromCode returns the fund owner for the text before the first '-' of a fund
// code, or "" when the prefix is not recognized.
func OwnerFromCode(fundCode string) domain.CompanyShort {
	prefix, _, _ := strings.Cut(fundCode, "-")
	return fundOwners[prefix]
}
