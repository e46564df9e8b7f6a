package repository

import "debate_arena/internal/storage"

type Repositories struct {
	Motion      MotionRepository
	Room        RoomRepository
	Participant ParticipantRepository
	Argument    ArgumentRepository
	Vote        VoteRepository
	Fallacy     FallacyRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		Motion:      NewMotionRepository(db),
		Room:        NewRoomRepository(db),
		Participant: NewParticipantRepository(db),
		Argument:    NewArgumentRepository(db),
		Vote:        NewVoteRepository(db),
		Fallacy:     NewFallacyRepository(db),
	}
}
