package core

// CurrencyOption pairs a currency code with its Arabic display label.
type CurrencyOption struct {
	Value string
	Label string
}

// Currencies lists the selectable display currencies. The set leans on
// Arabic-speaking markets with a few global codes at the end; the first
// entry is the default.
var Currencies = []CurrencyOption{
	{Value: "ج.م", Label: "جنيه مصري"},
	{Value: "SAR", Label: "ريال سعودي"},
	{Value: "AED", Label: "درهم إماراتي"},
	{Value: "KWD", Label: "دينار كويتي"},
	{Value: "BHD", Label: "دينار بحريني"},
	{Value: "OMR", Label: "ريال عماني"},
	{Value: "QAR", Label: "ريال قطري"},
	{Value: "YER", Label: "ريال يمني"},
	{Value: "JOD", Label: "دينار أردني"},
	{Value: "IQD", Label: "دينار عراقي"},
	{Value: "SYP", Label: "ليرة سورية"},
	{Value: "LBP", Label: "ليرة لبنانية"},
	{Value: "IRR", Label: "ريال إيراني"},
	{Value: "TRY", Label: "ليرة تركية"},
	{Value: "DZD", Label: "دينار جزائري"},
	{Value: "TND", Label: "دينار تونسي"},
	{Value: "LYD", Label: "دينار ليبي"},
	{Value: "MAD", Label: "درهم مغربي"},
	{Value: "SDG", Label: "جنيه سوداني"},
	{Value: "DJF", Label: "فرنك جيبوتي"},
	{Value: "SOS", Label: "شلن صومالي"},
	{Value: "USD", Label: "دولار أمريكي"},
	{Value: "EUR", Label: "يورو"},
	{Value: "GBP", Label: "جنيه إسترليني"},
}

// IsValidCurrency reports whether code is one of the selectable currencies.
func IsValidCurrency(code string) bool {
	for _, c := range Currencies {
		if c.Value == code {
			return true
		}
	}
	return false
}
