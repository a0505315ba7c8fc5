package solver

import (
	"math"

	"github.com/notargets/ranscfd/config"
	"github.com/notargets/ranscfd/geometry"
	"github.com/notargets/ranscfd/variables"
)

// AeroCoefficients bundles the non-dimensional aerodynamic force/moment
// coefficients spec.md §1 lists as a core output ("flow-field outputs and
// aerodynamic force/moment coefficients") and §8's transonic/subsonic
// end-to-end scenarios report (C_L, C_D at prescribed Mach/AoA).
type AeroCoefficients struct {
	CL, CD, CM float64
}

// ForceCoefficients integrates the pressure force over every wall-marker
// boundary face and resolves it into lift, drag, and pitching-moment
// coefficients. It reuses the same pressure-only convention wallFlux
// already assembles into the residual (spec.md §4.4: zero mass flux,
// pressure on momentum), so the force reported here is exactly the
// integral of the momentum flux the mean-flow residual already applies at
// solid walls, not a separately re-derived surface integral.
//
// In 2D the force is resolved by the standard wind-axis rotation through
// the configured angle of attack. In 3D, drag is the force component
// along the freestream direction and lift is what remains of the force
// after removing the drag component and projecting onto the vertical
// (z) axis — a simplification that omits full sideslip-axis decomposition,
// adequate for the wing/body-alone cases spec.md's scenarios exercise.
func ForceCoefficients(mesh *geometry.Mesh, mf *variables.MeanFlow, gas variables.Gas, fs Freestream, cfg config.RunConfig) AeroCoefficients {
	ndim := mesh.NDim
	idx := variables.NewPrimIndex(ndim)
	pInf := fs.Prim[idx.Press]

	var F [3]float64
	var Mz float64
	refX, refY := cfg.MomentRefX, cfg.MomentRefY

	for bIdx := 0; bIdx < mesh.BoundaryFaceCount(); bIdx++ {
		bf := mesh.BoundaryFace(bIdx)
		if !bf.Marker.IsWall() {
			continue
		}
		U := mf.Cell(bf.Owner)
		rho := U[0]
		var ke float64
		for d := 0; d < ndim; d++ {
			u := U[1+d] / rho
			ke += u * u
		}
		p := (gas.Gamma - 1) * (U[ndim+1] - 0.5*rho*ke)
		dp := p - pInf

		// bf.Normal points outward from the fluid domain (into the body);
		// the force the fluid exerts on the body along that direction is
		// -dp*n (a positive gauge pressure pushes the body along -n).
		var fx, fy, fz float64
		fx = -dp * bf.Normal[0]
		fy = -dp * bf.Normal[1]
		F[0] += fx
		F[1] += fy
		if ndim == 3 {
			fz = -dp * bf.Normal[2]
			F[2] += fz
		}

		dx := bf.Midpoint[0] - refX
		dy := bf.Midpoint[1] - refY
		Mz += dx*fy - dy*fx
	}

	speed := 0.0
	for d := 0; d < ndim; d++ {
		v := fs.Prim[idx.VelX+d]
		speed += v * v
	}
	speed = math.Sqrt(speed)
	rhoInf := fs.Prim[idx.Rho]
	q := 0.5 * rhoInf * speed * speed
	sref := cfg.ReferenceArea
	lref := cfg.ReferenceLength
	if q <= 0 || sref <= 0 {
		return AeroCoefficients{}
	}

	var lift, drag float64
	if ndim == 2 {
		aoa := cfg.AoA * degToRad
		ca, sa := math.Cos(aoa), math.Sin(aoa)
		drag = F[0]*ca + F[1]*sa
		lift = -F[0]*sa + F[1]*ca
	} else {
		var dir [3]float64
		if speed > 1e-12 {
			for d := 0; d < ndim; d++ {
				dir[d] = fs.Prim[idx.VelX+d] / speed
			}
		}
		var dot float64
		for d := 0; d < 3; d++ {
			dot += F[d] * dir[d]
		}
		drag = dot
		lift = F[2] - dot*dir[2]
	}

	cm := 0.0
	if lref > 0 {
		cm = Mz / (q * sref * lref)
	}
	return AeroCoefficients{
		CL: lift / (q * sref),
		CD: drag / (q * sref),
		CM: cm,
	}
}
