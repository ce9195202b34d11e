package extractor

// BaseTract pairs a JHU atlas region id with its tract label.
type BaseTract struct {
	RegionID int
	Label    string
}

// BaseTracts enumerates the 48 base white matter tracts of the JHU
// ICBM-DTI-81 atlas, in region id order.
var BaseTracts = []BaseTract{
	{1, "ATR_L"}, {2, "ATR_R"},
	{3, "CST_L"}, {4, "CST_R"},
	{5, "CGC_L"}, {6, "CGC_R"},
	{7, "CGH_L"}, {8, "CGH_R"},
	{9, "FX_MAJOR"}, {10, "FX_MINOR"},
	{11, "IFO_L"}, {12, "IFO_R"},
	{13, "ILF_L"}, {14, "ILF_R"},
	{15, "SLF_L"}, {16, "SLF_R"},
	{17, "UNC_L"}, {18, "UNC_R"},
	{19, "SLF_T_L"}, {20, "SLF_T_R"},
	{21, "ALIC_L"}, {22, "ALIC_R"},
	{23, "PLIC_L"}, {24, "PLIC_R"},
	{25, "RLIC_L"}, {26, "RLIC_R"},
	{27, "ACR_L"}, {28, "ACR_R"},
	{29, "SCR_L"}, {30, "SCR_R"},
	{31, "PCR_L"}, {32, "PCR_R"},
	{33, "PTR_L"}, {34, "PTR_R"},
	{35, "SS_L"}, {36, "SS_R"},
	{37, "EC_L"}, {38, "EC_R"},
	{39, "FX_L"}, {40, "FX_R"},
	{41, "FXST_L"}, {42, "FXST_R"},
	{43, "SFO_L"}, {44, "SFO_R"},
	{45, "TAP_L"}, {46, "TAP_R"},
	{47, "SCC"}, {48, "GCC"},
}

// CompositeTracts lists the derived tracts in the order they are computed.
// BCC must precede CC because CC averages over BCC.
var CompositeTracts = []string{"BCC", "CC", "IC", "CR"}

// Sub-tracts averaged into the internal capsule and corona radiata
// composites. At least minBilateral of each set must be present.
var (
	internalCapsuleTracts = []string{"ALIC_L", "ALIC_R", "PLIC_L", "PLIC_R", "RLIC_L", "RLIC_R"}
	coronaRadiataTracts   = []string{"ACR_L", "ACR_R", "SCR_L", "SCR_R", "PCR_L", "PCR_R"}
)

const minBilateral = 4
