package transaction

// state drives the lifecycle shared by sales and returns:
// open -> completed, open -> cancelled. Both targets are terminal.
type state interface {
	Status() Status
	OnItemAdded() (state, error)
	OnCompleted() (state, error)
	OnCancelled() (state, error)
}

type openState struct{}

func (openState) Status() Status              { return StatusOpen }
func (openState) OnItemAdded() (state, error) { return openState{}, nil }
func (openState) OnCompleted() (state, error) { return completedState{}, nil }
func (openState) OnCancelled() (state, error) { return cancelledState{}, nil }

type completedState struct{}

func (completedState) Status() Status              { return StatusCompleted }
func (completedState) OnItemAdded() (state, error) { return nil, ErrClosed }
func (completedState) OnCompleted() (state, error) { return nil, ErrClosed }
func (completedState) OnCancelled() (state, error) { return nil, ErrClosed }

type cancelledState struct{}

func (cancelledState) Status() Status              { return StatusCancelled }
func (cancelledState) OnItemAdded() (state, error) { return nil, ErrClosed }
func (cancelledState) OnCompleted() (state, error) { return nil, ErrClosed }
func (cancelledState) OnCancelled() (state, error) { return nil, ErrClosed }
