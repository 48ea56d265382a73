package hypixel

import "math"

const (
	prestigeExp     = 487000
	regularLevelExp = 5000
)

// easyLevelCosts is the exp cost of the first four levels after a prestige
var easyLevelCosts = [...]float64{500, 1000, 2000, 3500}

// StarsFromExp converts raw bedwars experience into a fractional star
// level. Each prestige is 100 levels; the first four levels of a prestige
// are cheaper than the flat per-level cost after them.
func StarsFromExp(exp float64) float64 {
	level := 100 * math.Floor(exp/prestigeExp)
	exp = math.Mod(exp, prestigeExp)

	for _, cost := range easyLevelCosts {
		if exp < cost {
			return level + exp/cost
		}
		level++
		exp -= cost
	}

	return level + math.Floor(exp/regularLevelExp) +
		math.Mod(exp, regularLevelExp)/regularLevelExp
}
