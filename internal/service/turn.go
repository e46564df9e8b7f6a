package service

import "debate_arena/internal/models"

// NextSpeaker 決定下一位發言者
// 正方 k 號之後是反方 k 號，反方 k 號之後是正方 k+1 號；
// 反方最後一席講完，或是席位已超出範圍時，比賽結束
func NextSpeaker(cfg models.RoomConfig, cur models.Speaker) (next models.Speaker, gameOver bool) {
	slots := cfg.SlotCount()
	if cur.Seat < 1 || cur.Seat > slots || !cur.Side.Debating() {
		return models.Speaker{}, true
	}

	if cur.Side == models.SidePro {
		return models.Speaker{Side: models.SideContra, Seat: cur.Seat}, false
	}
	if cur.Seat+1 > slots {
		return models.Speaker{}, true
	}
	return models.Speaker{Side: models.SidePro, Seat: cur.Seat + 1}, false
}

// FirstSpeaker 開場永遠是正方 1 號
func FirstSpeaker() models.Speaker {
	return models.Speaker{Side: models.SidePro, Seat: 1}
}
