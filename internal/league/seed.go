package league

import "safarifame/internal/model"

// SeedBoxers is the roster the league launched with.
func SeedBoxers() []model.Boxer {
	return []model.Boxer{
		{ID: 1, Name: "Tyson Fury", Nickname: "The Gypsy King", Points: 15000, Record: model.Record{Wins: 34, Losses: 1, Draws: 1}, Address: "447123456789@safarifame.com", AvatarURL: "https://picsum.photos/seed/tyson/200", Bio: "Heavyweight champion known for his unorthodox style and resilience."},
		{ID: 2, Name: "Oleksandr Usyk", Nickname: "The Cat", Points: 14500, Record: model.Record{Wins: 22}, Address: "380912345678@safarifame.com", AvatarURL: "https://picsum.photos/seed/usyk/200", Bio: "Undisputed cruiserweight and unified heavyweight champion, a master technician."},
		{ID: 3, Name: "Canelo Álvarez", Nickname: "Canelo", Points: 12000, Record: model.Record{Wins: 61, Losses: 2, Draws: 2}, Address: "523312345678@safarifame.com", AvatarURL: "https://picsum.photos/seed/canelo/200", Bio: "A four-division world champion, famous for his punching power and counterpunching."},
		{ID: 4, Name: "Naoya Inoue", Nickname: "The Monster", Points: 11500, Record: model.Record{Wins: 27}, Address: "819012345678@safarifame.com", AvatarURL: "https://picsum.photos/seed/inoue/200", Bio: "Undisputed bantamweight champion, feared for his devastating body shots."},
		{ID: 5, Name: "Terence Crawford", Nickname: "Bud", Points: 10000, Record: model.Record{Wins: 40}, Address: "14021234567@safarifame.com", AvatarURL: "https://picsum.photos/seed/crawford/200", Bio: "Undisputed welterweight champion, a switch-hitter with exceptional boxing IQ."},
	}
}

// SeedRequests are the join requests pending at launch.
func SeedRequests() []model.JoinRequest {
	return []model.JoinRequest{
		{ID: 1, Name: "John Doe", Nickname: "The Hammer", Phone: "254711223344", Status: model.StatusPending},
		{ID: 2, Name: "Jane Smith", Nickname: "Lights Out", Phone: "254755667788", Status: model.StatusPending},
	}
}
