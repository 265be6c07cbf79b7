/*
go-swingkit analyses a golf swing from a sequence of body landmarks produced
by a pose estimation model.  It segments the captured frames into the seven
swing phases (address, approach, backswing, top, downswing, impact and
follow through), computes biomechanical metrics such as tempo ratio, X-Factor
and weight transfer, and grades the swing with an overall score and letter
grade.

The pipeline is a one shot batch transform over an already captured frame
sequence.  It performs no I/O and holds no state between runs, so independent
analyses may run concurrently.

See example code and usage in the example subdirectory.
*/
package swingkit
