// Package vm's embedded self-test program: a Whitespace program exercising
// arithmetic, stack manipulation, control flow, and I/O, printing a space
// between each result. Wired to the executor's --test flag.
// ExpectedSelfTestOutput is the output of the arithmetic/stack/control
// portion of the program, before it falls through to the two interactive
// INCH/INNUM probes at the end.
package vm

// SelfTestProgram is raw Whitespace source: space, tab, and line feed only.
const SelfTestProgram = `
 
 	 

   	
    
			 
 	
   


	

   	 
    
   	     
		    	   
  		 
	    
 	
 	
 	 	
  		 	
	  	 
 	
 	
 	 	
   		
	  
 
 	
 	
 	 	
   	 
	 	  
 	
 	
 	 	
   			
	 		 
 	
 	
 	 	
 
 	 	  
 	
 	
 	 	
   			
   	    
   	 	  
   		  	
   					
 	  		
 
 	
 	
 	 	
 
	 
 	
 	
 	 	
 

 
 	
 	
 	 	
 	
 		
	  
 
 	
 	
 	 	
   	 
 
 
	  			 
 
 
		 			 

   	     	
   		   		
 
 	
 	
 	 	
 

  		 
	    
 	
 	
 	 	

   			 
 
 
	  	     	
 
 
		 	  		
   							
 
 	
 	
 	 	

   	  		
   		  	  
	
	       		  	  
				
     		  	  
	
		      		  	  
				
 	


`

// ExpectedSelfTestOutput is what SelfTestProgram writes to stdout before its
// trailing INCH/INNUM steps, which require interactive input.
const ExpectedSelfTestOutput = "6 11 33 16 2 1 16 31 16 112 99 0 99 -2"
