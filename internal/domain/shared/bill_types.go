package shared

// BillType describes a payable bill category and its known providers
type BillType struct {
	Value     string   `json:"value"`
	Label     string   `json:"label"`
	Providers []string `json:"providers"`
}

// BillTypes is the catalogue of bill categories offered to clients
var BillTypes = []BillType{
	{Value: "electricity", Label: "Electricity", Providers: []string{"IKEDC", "EKEDC", "NEPA", "PHED"}},
	{Value: "telecoms", Label: "Telecoms", Providers: []string{"MTN", "Airtel", "Glo", "9mobile"}},
	{Value: "cable_tv", Label: "Cable TV", Providers: []string{"DSTV", "GOtv", "StarTimes", "Cable TV"}},
	{Value: "internet", Label: "Internet", Providers: []string{"Spectranet", "Swift", "Smile", "ipNX"}},
	{Value: "water", Label: "Water", Providers: []string{"Lagos Water Corp", "Abuja Water Board"}},
}

// BillTypeLabel returns the display label of a bill type value, or the value itself when unknown
func BillTypeLabel(value string) string {
	for _, bt := range BillTypes {
		if bt.Value == value {
			return bt.Label
		}
	}
	return value
}
