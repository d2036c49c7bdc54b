package gamification

// ContribuicaoPercentual is the even contribution share for n assigned
// members: floor(100/n). Shares intentionally may not sum to 100
// (3 members -> 33/33/33); the remainder is dropped, not redistributed.
func ContribuicaoPercentual(n int) int {
	if n <= 0 {
		return 0
	}
	return 100 / n
}

// XPGain apportions a task's XP reward by a member's contribution share.
func XPGain(pontosXP, contribuicaoPercentual int) int {
	return pontosXP * contribuicaoPercentual / 100
}

// DicoinGain converts earned XP to DiCoins at the fixed 50% rate, floored.
func DicoinGain(xp int) int {
	return xp / 2
}
