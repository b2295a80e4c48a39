package checks

// Abstract service keys. Shift service codes and certificate service groups
// both resolve to these, so qualification matching compares keys, not the
// raw code strings that drift between kaipoke imports.
const (
	ServiceKeyKodoengo = "kodoengo"  // 行動援護
	ServiceKeyJudo     = "judo_kaigo" // 重度訪問介護
	ServiceKeyIdo      = "ido_shien"  // 移動支援
	ServiceKeyKyotaku  = "kyotaku"    // 居宅介護（身体・家事・通院）
)

// serviceCodeKeys is the single code→key table shared by every check that
// needs it. Codes absent from this table require no specific qualification:
// the cross-reference treats them as an automatic pass by policy.
var serviceCodeKeys = map[string][]string{
	"行動援護":   {ServiceKeyKodoengo},
	"重度訪問介護": {ServiceKeyJudo},
	"重訪":     {ServiceKeyJudo},
	"移動支援":   {ServiceKeyIdo},
	"身体介護":   {ServiceKeyKyotaku},
	"家事援助":   {ServiceKeyKyotaku},
	"通院介助":   {ServiceKeyKyotaku},
}

// KeysForServiceCode maps a shift's service code to its required service
// keys; nil means no qualification requirement.
func KeysForServiceCode(code string) []string {
	return serviceCodeKeys[code]
}

// CodesForServiceKey returns every service code resolving to the key.
// Order is fixed so SQL filters stay stable across runs.
func CodesForServiceKey(key string) []string {
	ordered := []string{"行動援護", "重度訪問介護", "重訪", "移動支援", "身体介護", "家事援助", "通院介助"}
	var codes []string
	for _, code := range ordered {
		for _, k := range serviceCodeKeys[code] {
			if k == key {
				codes = append(codes, code)
			}
		}
	}
	return codes
}

// AllServiceCodes returns every code known to the mapping table.
func AllServiceCodes() []string {
	ordered := []string{"行動援護", "重度訪問介護", "重訪", "移動支援", "身体介護", "家事援助", "通院介助"}
	return ordered
}
