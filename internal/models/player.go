package models

// Player 玩家战绩记录，由外部统计进程整体写入
type Player struct {
	SteamID string         `json:"steamId"`
	Name    string         `json:"name"`
	Servers []PlayerServer `json:"servers"`
}

// PlayerServer 玩家在单个服务器上的战绩
type PlayerServer struct {
	Server  string  `json:"server,omitempty"`
	Kills   int     `json:"kills"`
	Downs   int     `json:"downs"`
	Deaths  int     `json:"deaths"`
	KDR     float64 `json:"kdr"`
	Revives int     `json:"revives"`
	TKs     int     `json:"tks"`
}

// PlayerTotals 各服务器战绩汇总
type PlayerTotals struct {
	Kills   int
	Downs   int
	Deaths  int
	Revives int
	TKs     int
	// AverageKDR 为各服务器 KDR 的算术平均，而不是总击杀/总死亡
	AverageKDR float64
}

// Totals 汇总所有服务器的战绩
func (p *Player) Totals() PlayerTotals {
	var t PlayerTotals
	if len(p.Servers) == 0 {
		return t
	}

	var kdrSum float64
	for _, s := range p.Servers {
		t.Kills += s.Kills
		t.Downs += s.Downs
		t.Deaths += s.Deaths
		t.Revives += s.Revives
		t.TKs += s.TKs
		kdrSum += s.KDR
	}
	t.AverageKDR = kdrSum / float64(len(p.Servers))

	return t
}
