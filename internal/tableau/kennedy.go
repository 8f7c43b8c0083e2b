package tableau

// Coefficients of the additive pairs of Kennedy and Carpenter, "Additive
// Runge-Kutta schemes for convection-diffusion-reaction equations",
// Appl. Numer. Math. 44 (2003). Each function returns the explicit
// tableau, the ESDIRK tableau and the shared dense-output table.

func kc32Coefficients() (explicit, implicit Coefficients, dense [][]float64) {
	const g = 1767732205903.0 / 4055673282236.0
	c := []float64{0, 1767732205903.0 / 2027836641118.0, 3.0 / 5.0, 1}
	b := []float64{
		1471266399579.0 / 7840856788654.0,
		-4482444167858.0 / 7529755066697.0,
		11266239266428.0 / 11593286722821.0,
		g,
	}
	bHat := []float64{
		2756255671327.0 / 12835298489170.0,
		-10771552573575.0 / 22201958757719.0,
		9247589265047.0 / 10645013368117.0,
		2193209047091.0 / 5459859503100.0,
	}

	explicit = Coefficients{
		C: c,
		A: [][]float64{
			{},
			{1767732205903.0 / 2027836641118.0},
			{5535828885825.0 / 10492691773637.0, 788022342437.0 / 10882634858940.0},
			{
				6485989280629.0 / 16251701735622.0,
				-4246266847089.0 / 9704473918619.0,
				10755448449292.0 / 10357097424841.0,
			},
		},
		B:    b,
		BHat: bHat,
	}
	implicit = Coefficients{
		C: c,
		A: [][]float64{
			{0},
			{g, g},
			{2746238789719.0 / 10658868560708.0, -640167445237.0 / 6845629431997.0, g},
			{b[0], b[1], b[2], g},
		},
		B:    b,
		BHat: bHat,
	}
	dense = [][]float64{
		{4655552711362.0 / 22874653954995.0, -215264564351.0 / 13552729205753.0},
		{-18682724506714.0 / 9892148508045.0, 17870216137069.0 / 13817060693119.0},
		{34259539580243.0 / 13192909600954.0, -28141676662227.0 / 17317692491321.0},
		{584795268549.0 / 6622622206610.0, 2508943948391.0 / 7218656332882.0},
	}
	return explicit, implicit, dense
}

func kc43Coefficients() (explicit, implicit Coefficients, dense [][]float64) {
	const g = 1.0 / 4.0
	c := []float64{0, 1.0 / 2.0, 83.0 / 250.0, 31.0 / 50.0, 17.0 / 20.0, 1}
	b := []float64{
		82889.0 / 524892.0, 0, 15625.0 / 83664.0, 69875.0 / 102672.0,
		-2260.0 / 8211.0, g,
	}
	bHat := []float64{
		4586570599.0 / 29645900160.0, 0, 178811875.0 / 945068544.0,
		814220225.0 / 1159782912.0, -3700637.0 / 11593932.0, 61727.0 / 225920.0,
	}

	explicit = Coefficients{
		C: c,
		A: [][]float64{
			{},
			{1.0 / 2.0},
			{13861.0 / 62500.0, 6889.0 / 62500.0},
			{
				-116923316275.0 / 2393684061468.0,
				-2731218467317.0 / 15368042101831.0,
				9408046702089.0 / 11113171139209.0,
			},
			{
				-451086348788.0 / 2902428689909.0,
				-2682348792572.0 / 7519795681897.0,
				12662868775082.0 / 11960479115383.0,
				3355817975965.0 / 11060851509271.0,
			},
			{
				647845179188.0 / 3216320057751.0,
				73281519250.0 / 8382639484533.0,
				552539513391.0 / 3454668386233.0,
				3354512671639.0 / 8306763924573.0,
				4040.0 / 17871.0,
			},
		},
		B:    b,
		BHat: bHat,
	}
	implicit = Coefficients{
		C: c,
		A: [][]float64{
			{0},
			{g, g},
			{8611.0 / 62500.0, -1743.0 / 31250.0, g},
			{5012029.0 / 34652500.0, -654441.0 / 2922500.0, 174375.0 / 388108.0, g},
			{
				15267082809.0 / 155376265600.0, -71443401.0 / 120774400.0,
				730878875.0 / 902184768.0, 2285395.0 / 8070912.0, g,
			},
			{b[0], b[1], b[2], b[3], b[4], g},
		},
		B:    b,
		BHat: bHat,
	}
	dense = [][]float64{
		{6943876665148.0 / 7220017795957.0, -54480133.0 / 30881146.0, 6818779379841.0 / 7100303317025.0},
		{0, 0, 0},
		{7640104374378.0 / 9702883013639.0, -11436875.0 / 14766696.0, 2173542590792.0 / 12501825683035.0},
		{-20649996744609.0 / 7521556579894.0, 174696575.0 / 18121608.0, -31592104683404.0 / 5083833661969.0},
		{8854892464581.0 / 2390941311638.0, -12120380.0 / 966161.0, 61146701046299.0 / 7138195549469.0},
		{-11397109935349.0 / 6675773540249.0, 3843.0 / 706.0, -17219254887155.0 / 4939391667607.0},
	}
	return explicit, implicit, dense
}

func kc54Coefficients() (explicit, implicit Coefficients, dense [][]float64) {
	const g = 41.0 / 200.0
	c := []float64{
		0, 41.0 / 100.0, 2935347310677.0 / 11292855782101.0,
		1426016391358.0 / 7196633302097.0, 92.0 / 100.0, 24.0 / 100.0, 3.0 / 5.0, 1,
	}
	b := []float64{
		-872700587467.0 / 9133579230613.0, 0, 0,
		22348218063261.0 / 9555858737531.0,
		-1143369518992.0 / 8141816002931.0,
		-39379526789629.0 / 19018526304540.0,
		32727382324388.0 / 42900044865799.0,
		g,
	}
	bHat := []float64{
		-975461918565.0 / 9796059967033.0, 0, 0,
		78070527104295.0 / 32432590147079.0,
		-548382580838.0 / 3424219808633.0,
		-33438840321285.0 / 15594753105479.0,
		3629800801594.0 / 4656183773603.0,
		4035322873751.0 / 18575991585200.0,
	}

	explicit = Coefficients{
		C: c,
		A: [][]float64{
			{},
			{41.0 / 100.0},
			{367902744464.0 / 2072280473677.0, 677623207551.0 / 8224143866563.0},
			{1268023523408.0 / 10340822734521.0, 0, 1029933939417.0 / 13636558850479.0},
			{
				14463281900351.0 / 6315353703477.0, 0,
				66114435211212.0 / 5879490589093.0,
				-54053170152839.0 / 4284798021562.0,
			},
			{
				14090043504691.0 / 34967701212078.0, 0,
				15191511035443.0 / 11219624916014.0,
				-18461159152457.0 / 12425892160975.0,
				-281667163811.0 / 9011619295870.0,
			},
			{
				19230459214898.0 / 13134317526959.0, 0,
				21275331358303.0 / 2942455364971.0,
				-38145345988419.0 / 4862620318723.0,
				-1.0 / 8.0, -1.0 / 8.0,
			},
			{
				-19977161125411.0 / 11928030595625.0, 0,
				-40795976796054.0 / 6384907823539.0,
				177454434618887.0 / 12078138498510.0,
				782672205425.0 / 8267701900261.0,
				-69563011059811.0 / 9646580694205.0,
				7356628210526.0 / 4942186776405.0,
			},
		},
		B:    b,
		BHat: bHat,
	}
	implicit = Coefficients{
		C: c,
		A: [][]float64{
			{0},
			{g, g},
			{41.0 / 400.0, -567603406766.0 / 11931857230679.0, g},
			{683785636431.0 / 9252920307686.0, 0, -110385047103.0 / 1367015193373.0, g},
			{
				3016520224154.0 / 10081342136671.0, 0,
				30586259806659.0 / 12414158314087.0,
				-22760509404356.0 / 11113319521817.0, g,
			},
			{
				218866479029.0 / 1489978393911.0, 0,
				638256894668.0 / 5436446318841.0,
				-1179710474555.0 / 5321154724896.0,
				-60928119172.0 / 8023461067671.0, g,
			},
			{
				1020004230633.0 / 5715676835656.0, 0,
				25762820946817.0 / 25263940353407.0,
				-2161375909145.0 / 9755907335909.0,
				-211217309593.0 / 5846859502534.0,
				-4269925059573.0 / 7827059040749.0, g,
			},
			{b[0], b[1], b[2], b[3], b[4], b[5], b[6], g},
		},
		B:    b,
		BHat: bHat,
	}
	dense = [][]float64{
		{-17674230611817.0 / 10670229744614.0, 43486358583215.0 / 12773830924787.0, -9257016797708.0 / 5021505065439.0},
		{0, 0, 0},
		{0, 0, 0},
		{65168852399939.0 / 7868540260826.0, -91478233927265.0 / 11067650958493.0, 26096422576131.0 / 11239449250142.0},
		{15494834004392.0 / 5936557850923.0, -79368583304911.0 / 10890268929626.0, 92396832856987.0 / 20362823103730.0},
		{-99329723586156.0 / 26959484932159.0, -12239297817655.0 / 9152339842473.0, 30029262896817.0 / 10175596800299.0},
		{-19024464361622.0 / 5461577185407.0, 115839755401235.0 / 10719374521269.0, -26136350496073.0 / 3983972220547.0},
		{-6511271360970.0 / 6095937251113.0, 5843115559534.0 / 2180450260947.0, -5289405421727.0 / 3760307252460.0},
	}
	return explicit, implicit, dense
}
